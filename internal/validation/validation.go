// Package validation checks manifest resources before reconciliation
// touches the deployment manager. A resource that fails validation is
// reported and skipped; its siblings still converge.
package validation

import (
	"github.com/wasconverge/wasconverge/internal/diff"
	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/scope"
)

// checkResolver is used purely for scope-shape validation; paths derived
// from it are discarded.
var checkResolver = scope.NewResolver("", "")

// ValidateResource checks one manifest resource against its kind's
// schema and scope requirements.
func ValidateResource(r *domain.Resource) ValidationErrors {
	var errs ValidationErrors
	key := r.Key()

	if !r.Kind.Valid() {
		errs.Add(key, "kind", string(r.Kind), "unknown resource kind")
		return errs
	}

	if r.Kind == domain.KindClassLoader {
		validateClassLoader(r, key, &errs)
	} else if r.Name == "" {
		errs.Add(key, "name", "", "name is required")
	}

	if _, err := checkResolver.Resolve(r.Scope); err != nil {
		errs.Add(key, "scope", string(r.Scope.Kind), err.Error())
	}

	for attr := range diff.DesiredAttrs(r) {
		if !domain.KnownAttr(r.Kind, attr) {
			errs.Add(key, "attributes", attr, "attribute not supported by this kind")
		}
	}

	return errs
}

func validateClassLoader(r *domain.Resource, key string, errs *ValidationErrors) {
	if !r.Mode.Valid() {
		errs.Add(key, "mode", string(r.Mode), "mode must be PARENT_FIRST or PARENT_LAST")
	}
	if len(r.Libraries) == 0 && !r.Absent {
		errs.Add(key, "libraries", "", "at least one library is required")
	}
	if r.Scope.Kind != domain.ScopeServer {
		errs.Add(key, "scope", string(r.Scope.Kind), "class loaders are server-scoped")
	}
	if len(r.Attributes) > 0 {
		errs.Add(key, "attributes", "", "class loaders take mode and libraries only")
	}
}

// ValidateAll validates a manifest set and returns the errors grouped
// with the valid remainder.
func ValidateAll(resources []domain.Resource) (valid []domain.Resource, errs ValidationErrors) {
	for i := range resources {
		if rerrs := ValidateResource(&resources[i]); rerrs.HasErrors() {
			errs = append(errs, rerrs...)
			continue
		}
		valid = append(valid, resources[i])
	}
	return valid, errs
}

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/uplift/internal/model"
	uplifterrors "github.com/alexisbeaulieu97/uplift/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	// Revisions are opaque identifiers, conceptually content hashes. The
	// engine only needs them to be single shell-safe tokens.
	revisionPattern = regexp.MustCompile(`^[0-9A-Za-z._-]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("revision", func(fl validator.FieldLevel) bool {
			return revisionPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("platform_tag", func(fl validator.FieldLevel) bool {
			_, err := model.ParsePlatformTag(fl.Field().String())
			return err == nil
		})

		validateInst = v
	})

	return validateInst
}

// ValidateMetadata performs schema and cross-field validation on parsed
// project metadata.
func ValidateMetadata(meta *Metadata) error {
	if meta == nil {
		return uplifterrors.NewValidationError("metadata", "metadata is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(meta); err != nil {
		return convertValidationError(err)
	}

	for _, raw := range meta.UnmanagedFiles {
		trimmed := strings.TrimSuffix(raw, "/")
		if _, err := model.CleanRelative(trimmed); err != nil {
			return uplifterrors.NewValidationError("unmanaged_files", err.Error(), err)
		}
	}

	return nil
}

func convertValidationError(err error) error {
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return uplifterrors.NewValidationError("metadata", invalid.Error(), err)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		field := normalizeFieldPath(first.Namespace())
		message := fmt.Sprintf("failed %q validation", first.Tag())
		return uplifterrors.NewValidationError(field, message, err)
	}

	return uplifterrors.NewValidationError("metadata", err.Error(), err)
}

func normalizeFieldPath(namespace string) string {
	// Namespaces look like "Metadata.Platforms[android].BaseRevision"; drop
	// the struct name and lower the exported field segments.
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = camelToSnake(part)
	}
	return strings.Join(parts, ".")
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

package conversation

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/athipan1/Database-painaidee/internal/api/nlu"
	"github.com/athipan1/Database-painaidee/internal/types"
)

// PreferenceValidator checks a preference update and rewrites it into
// canonical form: English province names, activity tags and a lower-case language.
type PreferenceValidator struct {
	validate *validator.Validate
	maxLimit int
}

func NewPreferenceValidator(maxLimit int) *PreferenceValidator {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	pv := &PreferenceValidator{validate: v, maxLimit: maxLimit}

	_ = v.RegisterValidation("province", func(fl validator.FieldLevel) bool {
		_, ok := nlu.CanonicalProvince(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("activity", func(fl validator.FieldLevel) bool {
		_, ok := nlu.CanonicalActivity(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("result_cap", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(pv.maxLimit)
	})
	return pv
}

// Normalize validates update and returns its canonical form. Any failure is
// wrapped in types.ErrInvalidPreference and nothing is returned.
func (pv *PreferenceValidator) Normalize(update types.Preferences) (types.Preferences, error) {
	p := update.Clone()
	if p.Language != nil {
		lang := strings.ToLower(strings.TrimSpace(*p.Language))
		p.Language = &lang
	}

	if err := pv.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return types.Preferences{}, fmt.Errorf("%w: %s failed on %q (value %v)",
				types.ErrInvalidPreference, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return types.Preferences{}, fmt.Errorf("%w: %w", types.ErrInvalidPreference, err)
	}

	if p.PreferredProvince != nil {
		canonical, _ := nlu.CanonicalProvince(*p.PreferredProvince)
		p.PreferredProvince = &canonical
	}
	if p.Interests != nil {
		tags := make([]string, 0, len(p.Interests))
		for _, interest := range p.Interests {
			tag, _ := nlu.CanonicalActivity(interest)
			if !slices.Contains(tags, tag) {
				tags = append(tags, tag)
			}
		}
		p.Interests = tags
	}
	return p, nil
}

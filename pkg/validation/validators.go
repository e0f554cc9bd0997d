package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxSkillLength bounds one skill token, in runes.
const MaxSkillLength = 64

// Allow letters, spaces, and common name punctuation: . ' - /
var nameRegex = regexp.MustCompile(`^[\p{L}\p{M} .'/-]+$`)

// New returns a validator with every custom rule registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("max_current_year", MaxCurrentYear)
	_ = v.RegisterValidation("skill_token", SkillToken)
}

// ValidName validates that a string contains only valid name characters
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return nameRegex.MatchString(val)
}

// NoEmoji rejects symbols outside the basic planes and "other"/"modifier" symbols.
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 || unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// MaxCurrentYear validates that a year does not exceed the current year
func MaxCurrentYear(fl validator.FieldLevel) bool {
	year := fl.Field().Int()
	if year == 0 {
		return true
	}
	return year <= int64(time.Now().Year())
}

// SkillToken accepts a non-blank skill of at most MaxSkillLength runes with no control characters.
func SkillToken(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if strings.TrimSpace(val) == "" || utf8.RuneCountInString(val) > MaxSkillLength {
		return false
	}
	return strings.IndexFunc(val, unicode.IsControl) < 0
}

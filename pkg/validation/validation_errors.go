package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	// CandidateProfile
	"UserID":         "User",
	"FullName":       "Full name",
	"Email":          "Email",
	"Skills":         "Skills",
	"Education":      "Education",
	"Experience":     "Experience",
	"Certifications": "Certifications",
	"ResumeURL":      "Résumé URL",

	// Education / Experience
	"Degree":      "Degree",
	"Field":       "Field of study",
	"Institution": "Institution",
	"Year":        "Graduation year",
	"Title":       "Title",
	"Company":     "Company",
	"Duration":    "Duration",
	"Description": "Description",

	// Job
	"RequiredSkills": "Required skills",

	// Interview
	"ScheduledTime":   "Scheduled time",
	"DurationMinutes": "Duration (minutes)",
	"Type":            "Interview type",
}

// FormatValidationErrors converts validator.ValidationErrors to readable messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()
	isString := e.Kind().String() == "string"
	isList := e.Kind().String() == "slice"

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)
	case "min":
		switch {
		case isString:
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		case isList:
			return fmt.Sprintf("%s: must have at least %s entries", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)
	case "max":
		switch {
		case isString:
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		case isList:
			return fmt.Sprintf("%s: must have at most %s entries", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "email":
		return fmt.Sprintf("%s: is not a valid email address", label)
	case "url":
		return fmt.Sprintf("%s: is not a valid URL", label)
	case "valid_name":
		return fmt.Sprintf("%s: may only contain letters, spaces and . ' - /", label)
	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or symbols", label)
	case "max_current_year":
		return fmt.Sprintf("%s: cannot be later than the current year", label)
	case "skill_token":
		return fmt.Sprintf("%s: each skill must be 1-%d characters without control characters", label, MaxSkillLength)
	default:
		return fmt.Sprintf("%s: failed %s validation", label, e.Tag())
	}
}

// getFieldLabel returns the label for a field; list elements like "Skills[2]" use the list's label
func getFieldLabel(fieldName string) string {
	base, index, indexed := strings.Cut(fieldName, "[")
	label, ok := FieldLabels[base]
	if !ok {
		label = formatCamelCase(base)
	}
	if indexed {
		return fmt.Sprintf("%s #%s", label, strings.TrimSuffix(index, "]"))
	}
	return label
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}

package checkout

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Address is the checkout destination and contact block. Validation gates
// order submission entirely client-side of the upstream call: nothing is
// sent while a required field is wrong.
type Address struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required,phone11"`
	Email    string `json:"email" validate:"omitempty,email"`
	Address  string `json:"address" validate:"required"`
	Country  string `json:"country" validate:"required"`
	State    string `json:"state" validate:"required"`
	Postcode string `json:"postcode"`
}

var validate *validator.Validate

var phoneRe = regexp.MustCompile(`^[0-9]{11}$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Local mobile numbers are always 11 digits (e.g. 01712345678)
	validate.RegisterValidation("phone11", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
}

// ValidationResult maps field names to messages. Submission is blocked while
// Errors is non-empty; Warnings never block.
type ValidationResult struct {
	Errors   map[string]string `json:"errors,omitempty"`
	Warnings map[string]string `json:"warnings,omitempty"`
}

func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

var fieldMessages = map[string]string{
	"Name":    "name is required",
	"Phone":   "phone must be exactly 11 digits",
	"Email":   "email address is not valid",
	"Address": "address is required",
	"Country": "country is required",
	"State":   "state is required",
}

// ValidateAddress applies the checkout form rules. Email is required only
// when the visitor asked to create an account; otherwise it is optional but
// must look like an email when present.
func ValidateAddress(addr Address, createAccount bool) ValidationResult {
	res := ValidationResult{Errors: map[string]string{}, Warnings: map[string]string{}}

	if err := validate.Struct(addr); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				field := fe.StructField()
				msg, known := fieldMessages[field]
				if !known {
					msg = "invalid value"
				}
				res.Errors[strings.ToLower(field)] = msg
			}
		} else {
			res.Errors["address"] = "invalid address"
		}
	}

	if createAccount && strings.TrimSpace(addr.Email) == "" {
		res.Errors["email"] = "email is required to create an account"
	}

	if pc := strings.TrimSpace(addr.Postcode); pc != "" && len(pc) < 3 {
		res.Warnings["postcode"] = "postcode looks too short"
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	if len(res.Warnings) == 0 {
		res.Warnings = nil
	}
	return res
}

// SplitName breaks a full name into the first/last pair the order payload
// wants: first token, then everything else.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

package service

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
)

// Client-side file limits, enforced before any bytes go on the wire.
const maxUploadSize = 10 << 20 // 10 MiB

var bidFileExts = map[string]bool{".zip": true}
var rfqDocExts = map[string]bool{".pdf": true, ".doc": true, ".docx": true}

// passwordSymbols is the fixed symbol set at least one of which a password
// must contain.
const passwordSymbols = "!@#$%^&*()_-+={}[]|:;\"'<>,.?/~`"

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
var phonePattern = regexp.MustCompile(`^(09|07)\d{8}$`)
var lowerPattern = regexp.MustCompile(`[a-z]`)
var upperPattern = regexp.MustCompile(`[A-Z]`)
var digitPattern = regexp.MustCompile(`\d`)

// Gate is the validation gate every form session must pass before its
// submission pipeline runs. It is pure: it inspects form state and returns a
// field-keyed error map, empty on success.
type Gate struct {
	v *validator.Validate
}

// NewGate builds a Gate with the custom rules registered: email with a TLD,
// password complexity and the local phone number format.
func NewGate() *Gate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("tldemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("localphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return &Gate{v: v}
}

// StrongPassword reports whether pwd satisfies the password policy: at least
// 10 characters with one lowercase, one uppercase, one digit and one symbol
// from the fixed set.
func StrongPassword(pwd string) bool {
	return len(pwd) >= 10 &&
		lowerPattern.MatchString(pwd) &&
		upperPattern.MatchString(pwd) &&
		digitPattern.MatchString(pwd) &&
		strings.ContainsAny(pwd, passwordSymbols)
}

// AccountForm carries the credential fields validated on login and signup.
// Phone is optional on login, hence omitempty.
type AccountForm struct {
	Email    string `form:"email" validate:"required,tldemail"`
	Password string `form:"password" validate:"required,strongpwd"`
	Phone    string `form:"phone" validate:"omitempty,localphone"`
}

// Account validates credential fields.
func (g *Gate) Account(f AccountForm) domain.ErrorMap {
	errs := domain.ErrorMap{}
	g.structErrors(f, errs)
	return errs
}

// Bid validates a bid form: at least one line item, each item well-formed,
// and a bid document present as new content or a stored reference.
func (g *Gate) Bid(items []domain.LineItemDraft, file domain.Attachment) domain.ErrorMap {
	errs := domain.ErrorMap{}

	if len(items) == 0 {
		errs["bidItems"] = "at least one line item is required"
	}
	for i, it := range items {
		key := func(f ItemField) string { return fmt.Sprintf("items[%d].%s", i, f) }
		if strings.TrimSpace(it.Name) == "" {
			errs[key(FieldName)] = "item name is required"
		}
		if !numeric(it.Quantity) {
			errs[key(FieldQuantity)] = "quantity must be a number"
		} else if domain.ParseAmount(it.Quantity) < 0 {
			errs[key(FieldQuantity)] = "quantity must not be negative"
		}
		if !domain.ValidUnit(it.Unit) {
			errs[key(FieldUnit)] = "unknown unit"
		}
		if !numeric(it.UnitPrice) {
			errs[key(FieldUnitPrice)] = "unit price must be a number"
		} else if domain.ParseAmount(it.UnitPrice) < 0 {
			errs[key(FieldUnitPrice)] = "unit price must not be negative"
		}
	}

	g.attachment(errs, "bidFile", file, true, bidFileExts, "a bid document (zip) is required")
	return errs
}

// RFQ validates a post/edit-RFQ form, including both required documents.
func (g *Gate) RFQ(f RFQFields, auctionDoc, guidelineDoc domain.Attachment) domain.ErrorMap {
	errs := domain.ErrorMap{}

	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(f.PurchaseNumber) == "" {
		errs["purchaseNumber"] = "purchase number is required"
	}
	if !numeric(f.Quantity) {
		errs["quantity"] = "quantity must be a number"
	} else if domain.ParseAmount(f.Quantity) <= 0 {
		errs["quantity"] = "quantity must be greater than zero"
	}
	if !domain.ValidUnit(f.Unit) {
		errs["unit"] = "unknown unit"
	}
	if strings.TrimSpace(f.Deadline) == "" {
		errs["deadline"] = "deadline is required"
	} else if !validDeadline(f.Deadline) {
		errs["deadline"] = "deadline must be a date in the form " + deadlineLayout
	}

	g.attachment(errs, "auctionDoc", auctionDoc, true, rfqDocExts, "an auction document is required")
	g.attachment(errs, "guidelineDoc", guidelineDoc, true, rfqDocExts, "a guideline document is required")
	return errs
}

// attachment applies the presence, size-ceiling and extension allow-list
// checks a file must pass before upload.
func (g *Gate) attachment(errs domain.ErrorMap, key string, a domain.Attachment, required bool, allowed map[string]bool, missingMsg string) {
	if !a.Present() {
		if required {
			errs[key] = missingMsg
		}
		return
	}
	if !a.HasNewContent() {
		return // keeping a stored reference needs no re-check
	}
	if a.Size() > maxUploadSize {
		errs[key] = fmt.Sprintf("file exceeds the %d MB limit", maxUploadSize>>20)
		return
	}
	if !allowed[a.Ext()] {
		errs[key] = fmt.Sprintf("file type %s is not allowed", a.Ext())
	}
}

// structErrors runs the tag-based validator and folds the result into the
// error map with human-readable messages.
func (g *Gate) structErrors(s any, errs domain.ErrorMap) {
	err := g.v.Struct(s)
	if err == nil {
		return
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["form"] = err.Error()
		return
	}
	for _, fe := range ve {
		errs[fe.Field()] = fieldMessage(fe)
	}
}

// fieldMessage converts a single validation error into the message shown
// under the offending field.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "tldemail":
		return fe.Field() + " must be a valid email address"
	case "strongpwd":
		return fe.Field() + " must be at least 10 characters with upper, lower, digit and symbol"
	case "localphone":
		return fe.Field() + " must be 10 digits starting with 09 or 07"
	default:
		return fmt.Sprintf("%s failed validation (%s)", fe.Field(), fe.Tag())
	}
}

func numeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func validDeadline(s string) bool {
	_, err := time.Parse(deadlineLayout, s)
	return err == nil
}

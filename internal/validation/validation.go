// Package validation evaluates declarative per-field rule lists ahead of
// the handlers. One generic gate replaces hand-written chains per entity:
// a rule names a field, its ordered checks, and an optional body mutation
// (slug derivation, nested id injection) applied once the checks pass.
package validation

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// BodyKey is where the gate stashes the parsed (and possibly mutated)
// request body; the body stream is consumed here and read exactly once.
const BodyKey = "validation.body"

type Source int

const (
	Body Source = iota
	Param
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Check inspects one value. present is false when the field is missing
// from the request entirely.
type Check struct {
	Rule string
	Fn   func(value any, present bool, body map[string]any) bool
	Msg  string
}

type Rule struct {
	Source   Source
	Field    string
	Optional bool
	Checks   []Check
	// Mutate runs after the field's checks pass; this is where body side
	// effects like slug derivation live.
	Mutate func(ctx *gin.Context, body map[string]any)
}

// Gate returns the middleware evaluating the rules. Every failure is
// collected; any failure short-circuits with 400.
func Gate(rules ...Rule) gin.HandlerFunc {
	needsBody := false

	for _, r := range rules {
		if r.Source == Body {
			needsBody = true
		}
	}

	return func(ctx *gin.Context) {
		var body map[string]any

		if needsBody {
			var ok bool
			body, ok = readBody(ctx)

			if !ok {
				return
			}
		}

		var fieldErrors []FieldError

		for _, rule := range rules {
			value, present := lookup(ctx, body, rule)

			if !present && rule.Optional {
				continue
			}

			failed := false

			for _, check := range rule.Checks {
				if !check.Fn(value, present, body) {
					failed = true
					fieldErrors = append(fieldErrors, FieldError{
						Field:   rule.Field,
						Rule:    check.Rule,
						Message: check.Msg,
					})
				}
			}

			if !failed && rule.Mutate != nil && body != nil {
				rule.Mutate(ctx, body)
			}
		}

		if len(fieldErrors) > 0 {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"status":  "fail",
				"message": "Validation failed",
				"errors":  fieldErrors,
			})
			return
		}

		if body != nil {
			ctx.Set(BodyKey, body)
		}

		ctx.Next()
	}
}

// BodyFromContext returns the gate-parsed body, if a gate ran.
func BodyFromContext(ctx *gin.Context) (map[string]any, bool) {
	v, ok := ctx.Get(BodyKey)

	if !ok {
		return nil, false
	}

	body, ok := v.(map[string]any)

	return body, ok
}

func readBody(ctx *gin.Context) (map[string]any, bool) {
	raw, err := io.ReadAll(ctx.Request.Body)

	if err != nil {
		abortBadBody(ctx)
		return nil, false
	}

	body := map[string]any{}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			abortBadBody(ctx)
			return nil, false
		}
	}

	return body, true
}

func abortBadBody(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"status":  "fail",
		"message": "Invalid request body",
	})
}

func lookup(ctx *gin.Context, body map[string]any, rule Rule) (any, bool) {
	if rule.Source == Param {
		v := ctx.Param(rule.Field)
		return v, v != ""
	}

	v, ok := body[rule.Field]

	return v, ok
}

// ---- checks ----

func Required(msg string) Check {
	return Check{
		Rule: "required",
		Msg:  msg,
		Fn: func(value any, present bool, body map[string]any) bool {
			if !present {
				return false
			}
			s, isString := value.(string)
			return !isString || s != ""
		},
	}
}

func MinLen(n int, msg string) Check {
	return Check{
		Rule: "min",
		Msg:  msg,
		Fn: func(value any, present bool, body map[string]any) bool {
			s, ok := value.(string)
			return present && ok && len([]rune(s)) >= n
		},
	}
}

func MaxLen(n int, msg string) Check {
	return Check{
		Rule: "max",
		Msg:  msg,
		Fn: func(value any, present bool, body map[string]any) bool {
			s, ok := value.(string)
			return present && ok && len([]rune(s)) <= n
		},
	}
}

var validate = validator.New()

func IsEmail(msg string) Check {
	return Check{
		Rule: "email",
		Msg:  msg,
		Fn: func(value any, present bool, body map[string]any) bool {
			s, ok := value.(string)
			return present && ok && validate.Var(s, "email") == nil
		},
	}
}

func IsNumeric(msg string) Check {
	return Check{
		Rule: "numeric",
		Msg:  msg,
		Fn: func(value any, present bool, body map[string]any) bool {
			if !present {
				return false
			}
			switch v := value.(type) {
			case float64:
				return true
			case string:
				_, err := strconv.ParseFloat(v, 64)
				return err == nil
			default:
				return false
			}
		},
	}
}

func IsUUID(msg string) Check {
	return Check{
		Rule: "uuid",
		Msg:  msg,
		Fn: func(value any, present bool, body map[string]any) bool {
			s, ok := value.(string)
			if !present || !ok {
				return false
			}
			_, err := uuid.Parse(s)
			return err == nil
		},
	}
}

func IsArray(msg string) Check {
	return Check{
		Rule: "array",
		Msg:  msg,
		Fn: func(value any, present bool, body map[string]any) bool {
			if !present {
				return false
			}
			_, ok := value.([]any)
			return ok
		},
	}
}

func OneOf(msg string, allowed ...string) Check {
	return Check{
		Rule: "oneof",
		Msg:  msg,
		Fn: func(value any, present bool, body map[string]any) bool {
			s, ok := value.(string)
			if !present || !ok {
				return false
			}
			for _, a := range allowed {
				if s == a {
					return true
				}
			}
			return false
		},
	}
}

// Custom wraps an arbitrary predicate; it sees the whole parsed body, so
// cross-field checks (password confirmation) live here.
func Custom(rule, msg string, fn func(value any, body map[string]any) bool) Check {
	return Check{
		Rule: rule,
		Msg:  msg,
		Fn: func(value any, present bool, body map[string]any) bool {
			return fn(value, body)
		},
	}
}

package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

type registerForm struct {
	Username string `form:"username" binding:"required,min=6,max=35"`
	Email    string `form:"email" binding:"required,email,min=6,max=35"`
	Password string `form:"password" binding:"required,min=8,max=35"`
	Confirm  string `form:"confirm" binding:"eqfield=Password"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email,min=6,max=35"`
	Password string `form:"password" binding:"required"`
}

type blogForm struct {
	Name string `form:"blog-name" binding:"required,max=120"`
	Body string `form:"blog-body" binding:"required,max=300"`
}

// secretFields are bound exactly as typed.
var secretFields = map[string]bool{"password": true, "confirm": true}

// foldedFields are compared case-insensitively, so they are stored lowercase.
var foldedFields = map[string]bool{"email": true}

// bindForm NFC-normalizes and trims the posted values, lowercases the
// foldedFields, then binds and validates them into obj. Lengths are counted
// in runes after normalization.
func bindForm(c *gin.Context, obj any) error {
	if err := c.Request.ParseForm(); err != nil {
		return err
	}
	for k, vs := range c.Request.PostForm {
		if secretFields[k] {
			continue
		}
		for i, v := range vs {
			v = strings.TrimSpace(norm.NFC.String(v))
			if foldedFields[k] {
				v = strings.ToLower(v)
			}
			vs[i] = v
		}
	}
	return c.ShouldBindWith(obj, binding.FormPost)
}

const msgRequired = "This field is required."

// fieldErrors turns a binding error into one message per struct field.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["Form"] = "Invalid form submission."
		return out
	}
	for _, fe := range ve {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return "Invalid Email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "eqfield":
		return "Passwords must match"
	}
	return "Invalid " + fe.Tag()
}

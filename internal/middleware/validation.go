package middleware

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var icd10Pattern = regexp.MustCompile(`^[A-TV-Za-tv-z][0-9][0-9A-Za-z](\.[0-9A-Za-z]{1,4})?$`)

// Validation registers domain validators on gin's binding engine: the icd10
// tag for diagnosis codes, and JSON field names so validation errors reference
// the wire name the caller sent.
func Validation() gin.HandlerFunc {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("icd10", func(fl validator.FieldLevel) bool {
			return icd10Pattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			return name
		})
	}

	return func(c *gin.Context) {
		c.Next()
	}
}

package handler

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorsOnce sync.Once

// RegisterValidators adds the custom binding rules the handler payloads
// carry, so struct validation works wherever a handler runs. "isodate"
// accepts the date formats project documents use: YYYY-MM-DD, YYYY-MM,
// or RFC 3339.
func RegisterValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			for _, layout := range []string{"2006-01-02", "2006-01", time.RFC3339} {
				if _, err := time.Parse(layout, s); err == nil {
					return true
				}
			}
			return false
		})
	})
}

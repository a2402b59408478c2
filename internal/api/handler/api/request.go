package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lrchart/chartai/internal/core"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors maps a failed required field to its domain error, so a
// missing pair reads the same over the API as on the pages.
var fieldErrors = map[string]*core.Error{
	"Pair":        core.ErrPairRequired,
	"ImageBase64": core.ErrImageRequired,
}

// decodeJSON reads a JSON body into v and validates it. An empty body is
// accepted when allowEmpty is set.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return core.WrapError(core.ErrBadRequest, err)
		}
	}
	return check(v)
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return core.WrapError(core.ErrBadRequest, err)
	}
	fe := verrs[0]
	if base, ok := fieldErrors[fe.StructField()]; ok && fe.Tag() == "required" {
		return base
	}
	return core.WrapError(core.ErrBadRequest, fmt.Errorf("%s failed %q", fe.Field(), fe.Tag()))
}

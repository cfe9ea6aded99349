package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/kotoba-app/kotoba-api/internal/api/shared"
)

// validate is the shared validator instance for request payloads.
var validate = validator.New()

// DecodeAndValidate decodes the request body into dst and runs struct
// validation. On failure it writes a 400 response and returns false; the
// handler should simply return.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request data", err)
		return false
	}
	return true
}

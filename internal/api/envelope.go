package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/agrix/agrix-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the versioned
// envelope. Errors become {"success":false,"error":{...}}; everything else
// becomes {"success":true,"data":...}.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return response.Fail(body.Code, body.Message, body.Details), nil
	case response.Envelope, *response.Envelope:
		return v, nil
	case huma.StatusError:
		return response.Fail(statusToCode(body.GetStatus()), body.Error(), nil), nil
	}
	return response.OK(v), nil
}

package apiclient

import (
	"errors"

	"github.com/MarcoMadridG27/Thesaurus/internal/common"
)

func asServiceError(err error) (*common.ServiceError, bool) {
	var se *common.ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

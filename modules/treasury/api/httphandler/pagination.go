package httphandler

import (
	"github.com/cockroachdb/errors"
)

const defaultLimit = 100

type paginationRequest struct {
	Limit  int32 `query:"limit"`
	Offset int32 `query:"offset"`
}

func (r paginationRequest) Validate() error {
	var errList []error
	if r.Limit < 0 {
		errList = append(errList, errors.New("'limit' must be non-negative"))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must be non-negative"))
	}
	return errors.Join(errList...)
}

func (r *paginationRequest) ParseDefault() error {
	if r.Limit == 0 {
		r.Limit = defaultLimit
	}
	return nil
}

package exam

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
)

var (
	// errors
	ErrRegistrationNotFound = errors.New("student not found")
	ErrResultNotFound       = errors.New("result not found")
	ErrNoResultForRegNo     = errors.New("No result found for this registration number")
)

type Service struct {
	store core.DocumentStore
}

func NewService(store core.DocumentStore) *Service {
	return &Service{store: store}
}

func (svc *Service) GetRegistration(ctx context.Context, id string) (Registration, error) {
	doc, err := svc.store.Get(ctx, core.CollExamRegistrations, id)
	if err != nil {
		if err == core.ErrDocNotFound {
			return Registration{}, ErrRegistrationNotFound
		}
		return Registration{}, errors.Wrap(err, "getting exam registration")
	}
	var reg Registration
	if err = doc.DataTo(&reg); err != nil {
		return Registration{}, err
	}
	return reg, nil
}

func (svc *Service) GetResult(ctx context.Context, id string) (Result, error) {
	doc, err := svc.store.Get(ctx, core.CollExamResults, id)
	if err != nil {
		if err == core.ErrDocNotFound {
			return Result{}, ErrResultNotFound
		}
		return Result{}, errors.Wrap(err, "getting exam result")
	}
	var res Result
	if err = doc.DataTo(&res); err != nil {
		return Result{}, err
	}
	return res, nil
}

// LatestResult returns the most recently submitted result for a registration number.
func (svc *Service) LatestResult(ctx context.Context, regNo string) (Result, error) {
	docs, err := svc.store.Query(ctx, core.Query{
		Collection: core.CollExamResults,
		Filters:    []core.Filter{{Field: "registrationNumber", Value: regNo}},
		Orderings:  []core.Ordering{{Field: "submittedAt", Ascending: false}},
		Limit:      1,
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "querying exam results")
	}
	if len(docs) == 0 {
		return Result{}, ErrNoResultForRegNo
	}
	var res Result
	if err = docs[0].DataTo(&res); err != nil {
		return Result{}, err
	}
	return res, nil
}

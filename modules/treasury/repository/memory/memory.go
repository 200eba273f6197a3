package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/common/errs"
	"github.com/treasury-network/treasury-engine/modules/treasury/datagateway"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
)

// Make sure Repository implements the TreasuryDataGateway interface
var _ datagateway.TreasuryDataGateway = (*Repository)(nil)

// Repository is an in-memory treasury datagateway for simulator and dry-run
// deployments that run without a database. State does not survive restarts,
// including the burn ledger.
type Repository struct {
	mu     sync.RWMutex
	burns  map[[2]int]*entity.BurnRecord
	runs   []*entity.RunReport
	nextId int64
}

func NewRepository() *Repository {
	return &Repository{
		burns:  make(map[[2]int]*entity.BurnRecord),
		nextId: 1,
	}
}

func (r *Repository) GetBurnRecord(_ context.Context, year, quarter int) (*entity.BurnRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.burns[[2]int{year, quarter}]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "no burn recorded for %d Q%d", year, quarter)
	}
	clone := *record
	return &clone, nil
}

func (r *Repository) RecordBurn(_ context.Context, record entity.BurnRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int{record.Year, record.Quarter}
	if _, ok := r.burns[key]; ok {
		return errors.Wrapf(errs.ConflictSetting, "burn already recorded for %d Q%d", record.Year, record.Quarter)
	}
	r.burns[key] = &record
	return nil
}

func (r *Repository) GetBurnRecords(_ context.Context, limit, offset int32) ([]*entity.BurnRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]*entity.BurnRecord, 0, len(r.burns))
	for _, record := range r.burns {
		clone := *record
		records = append(records, &clone)
	}
	// newest first
	sort.Slice(records, func(i, j int) bool {
		return records[i].BurnedAt.After(records[j].BurnedAt)
	})
	return paginate(records, limit, offset), nil
}

func (r *Repository) CreateRunReport(_ context.Context, report *entity.RunReport) (*entity.RunReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *report
	clone.Id = r.nextId
	r.nextId++
	r.runs = append(r.runs, &clone)
	result := clone
	return &result, nil
}

func (r *Repository) GetRunReport(_ context.Context, id int64) (*entity.RunReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, run := range r.runs {
		if run.Id == id {
			clone := *run
			return &clone, nil
		}
	}
	return nil, errors.Wrapf(errs.NotFound, "run %d", id)
}

func (r *Repository) GetRunReports(_ context.Context, limit, offset int32) ([]*entity.RunReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// runs are appended in order, newest last
	reversed := make([]*entity.RunReport, 0, len(r.runs))
	for i := len(r.runs) - 1; i >= 0; i-- {
		clone := *r.runs[i]
		reversed = append(reversed, &clone)
	}
	return paginate(reversed, limit, offset), nil
}

func (r *Repository) CountRunReports(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.runs)), nil
}

func paginate[T any](items []T, limit, offset int32) []T {
	if offset >= int32(len(items)) {
		return nil
	}
	items = items[offset:]
	if limit >= 0 && limit < int32(len(items)) {
		items = items[:limit]
	}
	return items
}

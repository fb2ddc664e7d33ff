package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-bgremove/model"
	"github.com/khaledhikmat/vs-bgremove/service/config"
)

const (
	errorsFile     = "errors"
	runStatsFile   = "run-stats"
	modelStatsFile = "model-stats"
)

type filesDBService struct {
	CfgSvc config.IService
	mu     sync.Mutex
}

// NewFilesDB stores every entity kind as a JSON array in its own file under
// the runs folder.
func NewFilesDB(cfgsvc config.IService) IService {
	return &filesDBService{
		CfgSvc: cfgsvc,
	}
}

func (svc *filesDBService) NewError(err interface{}) error {
	// Determine if the error is custom
	var customErr model.CustomError
	switch e := err.(type) {
	case model.CustomError:
		customErr = e
	case *model.CustomError:
		customErr = *e
	case error:
		customErr.Processor = "N/A"
		customErr.Inner = e
		customErr.Message = e.Error()
		customErr.StackTrace = "N/A"
	default:
		customErr.Processor = "N/A"
		customErr.Message = fmt.Sprintf("%v", err)
		customErr.StackTrace = "N/A"
	}

	record := ErrorRecord{
		Timestamp:  time.Now().Unix(),
		Processor:  customErr.Processor,
		Message:    customErr.Message,
		StackTrace: customErr.StackTrace,
		Misc:       customErr.Misc,
	}
	if customErr.Inner != nil {
		record.Inner = customErr.Inner.Error()
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	return newEntity(record, errorsFile, svc.CfgSvc)
}

func (svc *filesDBService) NewRunStats(stats model.RunStats) error {
	if stats.Timestamp == 0 {
		stats.Timestamp = time.Now().Unix()
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	return newEntity(stats, runStatsFile, svc.CfgSvc)
}

func (svc *filesDBService) NewModelStats(stats model.ModelStats) error {
	stats.Timestamp = time.Now().Unix()

	svc.mu.Lock()
	defer svc.mu.Unlock()
	return newEntity(stats, modelStatsFile, svc.CfgSvc)
}

func (svc *filesDBService) RetrieveRunStats() ([]model.RunStats, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return retrieveEntities[model.RunStats](runStatsFile, svc.CfgSvc)
}

func (svc *filesDBService) RetrieveErrors() ([]ErrorRecord, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return retrieveEntities[ErrorRecord](errorsFile, svc.CfgSvc)
}

func entityPath(filename string, cfgsvc config.IService) string {
	return filepath.Join(cfgsvc.GetRunsFolder(), filename+".json")
}

func newEntity[T any](entity T, filename string, cfgsvc config.IService) error {
	entities, err := retrieveEntities[T](filename, cfgsvc)
	if err != nil {
		return err
	}

	entities = append(entities, entity)

	data, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return xerrors.Errorf("marshalling %s: %w", filename, err)
	}

	if err := os.MkdirAll(cfgsvc.GetRunsFolder(), 0755); err != nil {
		return xerrors.Errorf("creating runs folder: %w", err)
	}

	// Write the JSON data to the file (with truncation)
	if err := os.WriteFile(entityPath(filename, cfgsvc), data, 0644); err != nil {
		return xerrors.Errorf("writing %s: %w", filename, err)
	}

	return nil
}

func retrieveEntities[T any](filename string, cfgsvc config.IService) ([]T, error) {
	entities := []T{}

	data, err := os.ReadFile(entityPath(filename, cfgsvc))
	if errors.Is(err, os.ErrNotExist) {
		return entities, nil
	}
	if err != nil {
		return nil, xerrors.Errorf("reading %s: %w", filename, err)
	}

	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, xerrors.Errorf("decoding %s: %w", filename, err)
	}

	return entities, nil
}

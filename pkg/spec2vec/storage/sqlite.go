package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NLeSC/Spec2Vec/pkg/models"
	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
)

const DefaultDBFile = "spec2vec.sqlite3"
const errDBClientNil = "db client is nil"

// DBClient is the SQLite-backed spectral library store.
type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// SpectrumRecord is the persisted form of a library spectrum. Peak arrays are
// packed into a single blob; scalar metadata lives in indexed columns so
// listings never decode peaks.
type SpectrumRecord struct {
	ID          string  `gorm:"primaryKey;type:varchar(36)"`
	Name        string  `gorm:"index:idx_compound_name" json:"name"`
	PrecursorMz float64 `gorm:"index:idx_precursor_mz" json:"precursor_mz"`
	Charge      int     `json:"charge"`
	NumPeaks    int     `json:"num_peaks"`
	Peaks       []byte  `json:"-"`
	CreatedAt   time.Time
}

// NewDBClient opens the library at SPEC2VEC_DB_PATH or the default file.
func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("SPEC2VEC_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

// NewDBClientWithPath opens (creating if needed) the library at dbPath.
func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&SpectrumRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RegisterSpectrum stores one spectrum under a fresh UUID. An empty name
// falls back to the spectrum's compound_name metadata.
func (c *DBClient) RegisterSpectrum(name string, s *spectrum.Spectrum) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}
	rec := newRecord(name, s)
	if err := c.DB.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("creating spectrum record: %w", err)
	}
	return rec.ID, nil
}

// RegisterSpectra bulk-inserts spectra and returns their IDs in input order.
// names may be nil or shorter than specs; missing names fall back to
// compound_name metadata.
func (c *DBClient) RegisterSpectra(names []string, specs []*spectrum.Spectrum) ([]string, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	recs := make([]SpectrumRecord, len(specs))
	ids := make([]string, len(specs))
	for i, s := range specs {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		recs[i] = newRecord(name, s)
		ids[i] = recs[i].ID
	}
	if len(recs) == 0 {
		return ids, nil
	}
	if err := c.DB.CreateInBatches(recs, 500).Error; err != nil {
		return nil, fmt.Errorf("batch insert spectra: %w", err)
	}
	return ids, nil
}

// GetSpectrumByID loads one spectrum and its library entry.
func (c *DBClient) GetSpectrumByID(id string) (*spectrum.Spectrum, *models.LibraryEntry, error) {
	if c == nil || c.DB == nil {
		return nil, nil, errors.New(errDBClientNil)
	}
	var rec SpectrumRecord
	if err := c.DB.Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, nil, fmt.Errorf("querying spectrum %s: %w", id, err)
	}
	s, err := recordSpectrum(&rec)
	if err != nil {
		return nil, nil, err
	}
	entry := recordEntry(&rec)
	return s, &entry, nil
}

// ListSpectra returns all library entries without decoding peak blobs.
func (c *DBClient) ListSpectra() ([]models.LibraryEntry, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var recs []SpectrumRecord
	if err := c.DB.Select("id", "name", "precursor_mz", "charge", "num_peaks", "created_at").
		Order("created_at").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing spectra: %w", err)
	}
	out := make([]models.LibraryEntry, len(recs))
	for i := range recs {
		out[i] = recordEntry(&recs[i])
	}
	return out, nil
}

// LoadAll decodes every stored spectrum, aligned index-for-index with the
// returned entries.
func (c *DBClient) LoadAll() ([]models.LibraryEntry, []*spectrum.Spectrum, error) {
	if c == nil || c.DB == nil {
		return nil, nil, errors.New(errDBClientNil)
	}
	var recs []SpectrumRecord
	if err := c.DB.Order("created_at").Find(&recs).Error; err != nil {
		return nil, nil, fmt.Errorf("loading spectra: %w", err)
	}
	entries := make([]models.LibraryEntry, len(recs))
	specs := make([]*spectrum.Spectrum, len(recs))
	for i := range recs {
		s, err := recordSpectrum(&recs[i])
		if err != nil {
			return nil, nil, fmt.Errorf("record %s: %w", recs[i].ID, err)
		}
		entries[i] = recordEntry(&recs[i])
		specs[i] = s
	}
	return entries, specs, nil
}

func (c *DBClient) DeleteSpectrumByID(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	res := c.DB.Where("id = ?", id).Delete(&SpectrumRecord{})
	if res.Error != nil {
		return fmt.Errorf("deleting spectrum %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("spectrum %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// Count returns the number of stored spectra.
func (c *DBClient) Count() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var n int64
	if err := c.DB.Model(&SpectrumRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting spectra: %w", err)
	}
	return n, nil
}

func newRecord(name string, s *spectrum.Spectrum) SpectrumRecord {
	if name == "" {
		name = s.CompoundName()
	}
	prec, _ := s.PrecursorMz()
	charge, _ := s.Charge()
	return SpectrumRecord{
		ID:          uuid.NewString(),
		Name:        name,
		PrecursorMz: prec,
		Charge:      charge,
		NumPeaks:    s.Len(),
		Peaks:       encodePeaks(s.Mz(), s.Intensities()),
	}
}

func recordEntry(rec *SpectrumRecord) models.LibraryEntry {
	return models.LibraryEntry{
		ID:          rec.ID,
		Name:        rec.Name,
		PrecursorMz: rec.PrecursorMz,
		Charge:      rec.Charge,
		NumPeaks:    rec.NumPeaks,
		CreatedAt:   rec.CreatedAt,
	}
}

func recordSpectrum(rec *SpectrumRecord) (*spectrum.Spectrum, error) {
	mz, intensities, err := decodePeaks(rec.Peaks, rec.NumPeaks)
	if err != nil {
		return nil, err
	}
	meta := spectrum.Metadata{}
	if rec.Name != "" {
		meta[spectrum.KeyCompoundName] = rec.Name
	}
	if rec.PrecursorMz != 0 {
		meta[spectrum.KeyPrecursorMz] = rec.PrecursorMz
	}
	if rec.Charge != 0 {
		meta[spectrum.KeyCharge] = rec.Charge
	}
	s, err := spectrum.New(mz, intensities, meta)
	if err != nil {
		return nil, fmt.Errorf("decoding stored spectrum: %w", err)
	}
	return s, nil
}

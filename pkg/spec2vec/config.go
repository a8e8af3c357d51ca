package spec2vec

// Measure names accepted by WithMeasure. MeasureIntersect is not a valid
// library-search measure (it backs the pre-filter and pairwise scoring of
// the /api/score endpoint only).
const (
	MeasureCosine         = "cosine"
	MeasureModifiedCosine = "modified_cosine"
	MeasureIntersect      = "intersect"
)

type Config struct {
	DBPath         string
	Measure        string
	Tolerance      float64
	MzPower        float64
	IntensityPower float64
	Workers        int
	// PrefilterThreshold enables the IntersectMz pre-filter when > 0:
	// library entries whose intersection score falls below it are never
	// handed to the cosine measure.
	PrefilterThreshold float64
	MinMatchedPeaks    int
	MaxResults         int
	Logger             Logger
	Storage            Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) { c.DBPath = path }
}

func WithMeasure(name string) Option {
	return func(c *Config) { c.Measure = name }
}

func WithTolerance(tol float64) Option {
	return func(c *Config) { c.Tolerance = tol }
}

func WithPowers(mzPower, intensityPower float64) Option {
	return func(c *Config) {
		c.MzPower = mzPower
		c.IntensityPower = intensityPower
	}
}

func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

func WithPrefilter(threshold float64) Option {
	return func(c *Config) { c.PrefilterThreshold = threshold }
}

func WithMinMatchedPeaks(n int) Option {
	return func(c *Config) { c.MinMatchedPeaks = n }
}

func WithMaxResults(n int) Option {
	return func(c *Config) { c.MaxResults = n }
}

func WithLogger(log Logger) Option {
	return func(c *Config) { c.Logger = log }
}

func WithStorage(storage Storage) Option {
	return func(c *Config) { c.Storage = storage }
}

func defaultConfig() *Config {
	return &Config{
		DBPath:          "spec2vec.sqlite3",
		Measure:         MeasureCosine,
		Tolerance:       0.005,
		MzPower:         0.0,
		IntensityPower:  1.0,
		MinMatchedPeaks: 1,
		MaxResults:      25,
	}
}

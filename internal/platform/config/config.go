// internal/platform/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"newsrake/internal/core/domain"
)

type Config struct {
	// App
	Topic        string
	PrintVersion bool

	// Search presupuesto global de recuperación
	Search Search

	// Pool ejecución concurrente
	Pool Pool

	// Retry política de reintentos por tarea
	Retry Retry

	// Compensation rondas de gap-fill
	Compensation Compensation

	// Run límites de la invocación
	Run Run

	// Seeds fuentes core fijas (config estática); el planner añade las
	// discovered en runtime
	Seeds []SourceSeed

	// LLM endpoint compatible OpenAI para planner y summarizer
	LLM LLM

	// Output salida del reporte
	Output Output

	// HTTP comportamiento del cliente HTTP compartido
	HTTP HTTP

	// ProxyURL proxy HTTP(S) para peticiones salientes (opcional)
	ProxyURL string
}

type Search struct {
	// TotalTarget objetivo global de items (T)
	TotalTarget int `yaml:"total"`

	// MinPerCoreSource mínimo garantizado por fuente core (M)
	MinPerCoreSource int `yaml:"min_per_core"`

	// PlanInflation factor de inflación del presupuesto que ve el
	// planner, para absorber pérdidas de dedupe
	PlanInflation float64 `yaml:"plan_inflation"`

	// SnippetMaxLen recorte de snippet antes del summarizer
	SnippetMaxLen int `yaml:"snippet_max_len"`

	// TopN items del reporte final
	TopN int `yaml:"top_n"`
}

type Pool struct {
	// Workers techo de concurrencia (W)
	Workers int `yaml:"workers"`

	// PerSourceConcurrency máximo de tareas en vuelo por fuente
	PerSourceConcurrency int `yaml:"per_source_concurrency"`
}

type Retry struct {
	// MaxAttempts techo de intentos por tarea (incluye el primero)
	MaxAttempts int

	// BackoffBase delay base del backoff exponencial
	BackoffBase time.Duration

	// BackoffMultiplier multiplicador por intento
	BackoffMultiplier float64

	// BackoffMax tope del delay
	BackoffMax time.Duration

	// JitterFraction fracción de jitter sobre el delay [0.0-1.0]
	JitterFraction float64
}

// retryFile es la forma YAML de Retry (duraciones en segundos, como el
// resto de la configuración).
type retryFile struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	BackoffBaseS      int     `yaml:"backoff_base_seconds"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	BackoffMaxS       int     `yaml:"backoff_max_seconds"`
	JitterFraction    float64 `yaml:"jitter_fraction"`
}

type Compensation struct {
	// MaxRounds techo de rondas de compensación tras la inicial
	MaxRounds int `yaml:"max_rounds"`

	// ToleranceFraction si lo entregado alcanza esta fracción de T
	// (o T-FillBuffer), no se compensa más
	ToleranceFraction float64 `yaml:"tolerance_fraction"`

	// FillBuffer margen extra pedido en tareas de gap-fill
	FillBuffer int `yaml:"fill_buffer"`
}

type Run struct {
	// DeadlineS deadline global del run en segundos (0 = sin deadline)
	DeadlineS int `yaml:"deadline_seconds"`
}

type LLM struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type Output struct {
	Dir           string `yaml:"dir"`
	TableDisabled bool   `yaml:"table_disabled"`
}

type HTTP struct {
	// Rate peticiones salientes por segundo (0 = sin límite)
	Rate float64 `yaml:"rate"`

	// RateBurst ráfaga máxima del limitador
	RateBurst int `yaml:"rate_burst"`
}

// SourceSeed es la forma YAML de una fuente core fija.
type SourceSeed struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	MatchNames []string `yaml:"match_names"`
	Query      string   `yaml:"query"`
	Enabled    *bool    `yaml:"enabled"`
}

// fileConfig es el esquema del archivo YAML opcional.
type fileConfig struct {
	Search       *Search       `yaml:"search"`
	Pool         *Pool         `yaml:"pool"`
	Retry        *retryFile    `yaml:"retry"`
	Compensation *Compensation `yaml:"compensation"`
	Run          *Run          `yaml:"run"`
	Sources      []SourceSeed  `yaml:"sources"`
	LLM          *LLM          `yaml:"llm"`
	Output       *Output       `yaml:"output"`
	HTTP         *HTTP         `yaml:"http"`
	Proxy        string        `yaml:"proxy"`
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Search: Search{
			TotalTarget:      50,
			MinPerCoreSource: 3,
			PlanInflation:    1.5,
			SnippetMaxLen:    300,
			TopN:             10,
		},
		Pool: Pool{
			Workers:              5,
			PerSourceConcurrency: 1,
		},
		Retry: Retry{
			MaxAttempts:       3,
			BackoffBase:       2 * time.Second,
			BackoffMultiplier: 2.0,
			BackoffMax:        30 * time.Second,
			JitterFraction:    0.25,
		},
		Compensation: Compensation{
			MaxRounds:         2,
			ToleranceFraction: 0.9,
			FillBuffer:        2,
		},
		Run: Run{
			DeadlineS: 120,
		},
		Seeds: []SourceSeed{
			{Name: "google_news", Kind: "rss", MatchNames: []string{"Google News"}},
			{Name: "web_search", Kind: "web_search", MatchNames: []string{"Web Search"}},
		},
		LLM: LLM{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Output: Output{
			Dir: "newsrake_out",
		},
		HTTP: HTTP{
			Rate:      4,
			RateBurst: 2,
		},
	}
}

// Load inicializa la configuración: defaults -> YAML -> ENV -> FLAGS
// (los flags tienen prioridad). Retorna error solo ante configuración
// inválida (fatal por diseño).
func Load(args []string) (Config, error) {
	cfg := DefaultConfig()

	// Localizar archivo antes de parsear el resto
	path := getenv("NEWSRAKE_CONFIG", "")
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			path = args[i+1]
		}
	}
	if path != "" {
		if err := loadFromFile(&cfg, path); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	loadFromEnv(&cfg)

	if err := loadFromFlags(&cfg, args); err != nil {
		return cfg, err
	}

	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFromFile mezcla el YAML sobre los defaults.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	if fc.Search != nil {
		cfg.Search = *fc.Search
	}
	if fc.Pool != nil {
		cfg.Pool = *fc.Pool
	}
	if fc.Retry != nil {
		if fc.Retry.MaxAttempts > 0 {
			cfg.Retry.MaxAttempts = fc.Retry.MaxAttempts
		}
		if fc.Retry.BackoffBaseS > 0 {
			cfg.Retry.BackoffBase = time.Duration(fc.Retry.BackoffBaseS) * time.Second
		}
		if fc.Retry.BackoffMultiplier > 0 {
			cfg.Retry.BackoffMultiplier = fc.Retry.BackoffMultiplier
		}
		if fc.Retry.BackoffMaxS > 0 {
			cfg.Retry.BackoffMax = time.Duration(fc.Retry.BackoffMaxS) * time.Second
		}
		if fc.Retry.JitterFraction > 0 {
			cfg.Retry.JitterFraction = fc.Retry.JitterFraction
		}
	}
	if fc.Compensation != nil {
		cfg.Compensation = *fc.Compensation
	}
	if fc.Run != nil {
		cfg.Run = *fc.Run
	}
	if len(fc.Sources) > 0 {
		cfg.Seeds = fc.Sources
	}
	if fc.LLM != nil {
		cfg.LLM = *fc.LLM
	}
	if fc.Output != nil {
		cfg.Output = *fc.Output
	}
	if fc.HTTP != nil {
		cfg.HTTP = *fc.HTTP
	}
	if fc.Proxy != "" {
		cfg.ProxyURL = fc.Proxy
	}
	return nil
}

// loadFromEnv carga configuración desde variables de entorno.
func loadFromEnv(cfg *Config) {
	if v := getenv("NEWSRAKE_TOPIC", ""); v != "" {
		cfg.Topic = v
	}
	if v := getenv("NEWSRAKE_TOTAL", ""); v != "" {
		cfg.Search.TotalTarget = parseInt(v, cfg.Search.TotalTarget)
	}
	if v := getenv("NEWSRAKE_MIN_PER_CORE", ""); v != "" {
		cfg.Search.MinPerCoreSource = parseInt(v, cfg.Search.MinPerCoreSource)
	}
	if v := getenv("NEWSRAKE_WORKERS", ""); v != "" {
		cfg.Pool.Workers = parseInt(v, cfg.Pool.Workers)
	}
	if v := getenv("NEWSRAKE_DEADLINE", ""); v != "" {
		cfg.Run.DeadlineS = parseInt(v, cfg.Run.DeadlineS)
	}
	if v := getenv("NEWSRAKE_OUTPUT_DIR", ""); v != "" {
		cfg.Output.Dir = v
	}
	if v := getenv("NEWSRAKE_PROXY_URL", ""); v != "" {
		cfg.ProxyURL = v
	}
	if v := getenv("NEWSRAKE_RATE_LIMIT", ""); v != "" {
		cfg.HTTP.Rate = parseFloat(v, cfg.HTTP.Rate)
	}
	if v := getenv("NEWSRAKE_RATE_BURST", ""); v != "" {
		cfg.HTTP.RateBurst = parseInt(v, cfg.HTTP.RateBurst)
	}
	if v := getenv("NEWSRAKE_RETRY_MAX_ATTEMPTS", ""); v != "" {
		cfg.Retry.MaxAttempts = parseInt(v, cfg.Retry.MaxAttempts)
	}
	if v := getenv("NEWSRAKE_COMPENSATION_ROUNDS", ""); v != "" {
		cfg.Compensation.MaxRounds = parseInt(v, cfg.Compensation.MaxRounds)
	}

	// Credenciales LLM: genéricas primero, como el resto del ecosistema
	if v := getenv("API_KEY", ""); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := getenv("NEWSRAKE_LLM_API_KEY", ""); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := getenv("NEWSRAKE_LLM_BASE_URL", ""); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := getenv("NEWSRAKE_LLM_MODEL", ""); v != "" {
		cfg.LLM.Model = v
	}
}

// loadFromFlags parsea flags de CLI (overrides de ENV y YAML).
func loadFromFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet("newsrake", pflag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Ruta del archivo de configuración YAML")

	fs.StringVarP(&cfg.Topic, "topic", "t", cfg.Topic, "Tema de noticias (e.g., 'AI Agent')")
	fs.IntVar(&cfg.Search.TotalTarget, "total", cfg.Search.TotalTarget, "Objetivo global de items (T)")
	fs.IntVar(&cfg.Search.MinPerCoreSource, "min-per-core", cfg.Search.MinPerCoreSource, "Mínimo por fuente core (M)")
	fs.IntVarP(&cfg.Pool.Workers, "workers", "w", cfg.Pool.Workers, "Concurrencia máxima del pool (W)")
	fs.IntVar(&cfg.Pool.PerSourceConcurrency, "per-source", cfg.Pool.PerSourceConcurrency, "Tareas en vuelo por fuente")
	fs.IntVar(&cfg.Run.DeadlineS, "deadline", cfg.Run.DeadlineS, "Deadline global en segundos (0 = sin deadline)")
	fs.IntVar(&cfg.Retry.MaxAttempts, "retry.attempts", cfg.Retry.MaxAttempts, "Techo de intentos por tarea")
	fs.IntVar(&cfg.Compensation.MaxRounds, "compensation.rounds", cfg.Compensation.MaxRounds, "Techo de rondas de compensación")
	fs.StringVarP(&cfg.Output.Dir, "out", "o", cfg.Output.Dir, "Directorio de salida")
	fs.BoolVar(&cfg.Output.TableDisabled, "out.no-table", cfg.Output.TableDisabled, "Desactivar tabla en terminal (JSON siempre se genera)")
	fs.Float64Var(&cfg.HTTP.Rate, "rate", cfg.HTTP.Rate, "Peticiones HTTP por segundo (0 = sin límite)")
	fs.StringVar(&cfg.ProxyURL, "proxy", cfg.ProxyURL, "Proxy HTTP(S) para peticiones salientes")
	fs.BoolVar(&cfg.PrintVersion, "version", false, "Imprimir versión y salir")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Topic posicional: primer argumento que no sea flag
	if cfg.Topic == "" && fs.NArg() > 0 {
		cfg.Topic = fs.Arg(0)
	}
	return nil
}

func normalize(c *Config) {
	c.Topic = strings.TrimSpace(c.Topic)
	if c.Pool.Workers < 1 {
		c.Pool.Workers = 1
	}
	if c.Pool.PerSourceConcurrency < 1 {
		c.Pool.PerSourceConcurrency = 1
	}
	if c.Search.MinPerCoreSource < 0 {
		c.Search.MinPerCoreSource = 0
	}
	if c.Search.PlanInflation < 1.0 {
		c.Search.PlanInflation = 1.0
	}
	if c.Search.TopN < 1 {
		c.Search.TopN = 10
	}
	if c.Retry.MaxAttempts < 1 {
		c.Retry.MaxAttempts = 1
	}
	if c.Retry.BackoffBase <= 0 {
		c.Retry.BackoffBase = 2 * time.Second
	}
	if c.Retry.BackoffMultiplier < 1.0 {
		c.Retry.BackoffMultiplier = 2.0
	}
	if c.Retry.BackoffMax <= 0 {
		c.Retry.BackoffMax = 30 * time.Second
	}
	if c.Retry.JitterFraction < 0 || c.Retry.JitterFraction > 1.0 {
		c.Retry.JitterFraction = 0.25
	}
	if c.Compensation.MaxRounds < 0 {
		c.Compensation.MaxRounds = 0
	}
	if c.Compensation.ToleranceFraction <= 0 || c.Compensation.ToleranceFraction > 1.0 {
		c.Compensation.ToleranceFraction = 0.9
	}
	if c.Compensation.FillBuffer < 0 {
		c.Compensation.FillBuffer = 0
	}
	if c.Run.DeadlineS < 0 {
		c.Run.DeadlineS = 0
	}
	if c.HTTP.Rate < 0 {
		c.HTTP.Rate = 0
	}
	if c.HTTP.RateBurst < 1 {
		c.HTTP.RateBurst = 1
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "newsrake_out"
	}
}

// Validate aplica las validaciones fatales de configuración.
func (c Config) Validate() error {
	if c.Search.TotalTarget <= 0 {
		return fmt.Errorf("%w: total=%d", domain.ErrInvalidTargetTotal, c.Search.TotalTarget)
	}
	for _, seed := range c.Seeds {
		if _, err := seed.ToSpec(c.Search.MinPerCoreSource); err != nil {
			return err
		}
	}
	return nil
}

// ToSpec convierte un seed de configuración en una SourceSpec core.
func (s SourceSeed) ToSpec(minPerCore int) (domain.SourceSpec, error) {
	spec := domain.SourceSpec{
		Name:          s.Name,
		Tier:          domain.TierCore,
		Kind:          domain.QueryKind(s.Kind),
		MatchNames:    s.MatchNames,
		QueryTemplate: s.Query,
		MinItems:      minPerCore,
	}
	if err := spec.Validate(); err != nil {
		return domain.SourceSpec{}, fmt.Errorf("seed %q: %w", s.Name, err)
	}
	return spec, nil
}

// EnabledSeeds retorna los seeds habilitados (enabled omitido = true).
func (c Config) EnabledSeeds() []SourceSeed {
	out := make([]SourceSeed, 0, len(c.Seeds))
	for _, s := range c.Seeds {
		if s.Enabled != nil && !*s.Enabled {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Deadline devuelve el deadline del run como duración (0 = sin deadline).
func (c Config) Deadline() time.Duration {
	if c.Run.DeadlineS <= 0 {
		return 0
	}
	return time.Duration(c.Run.DeadlineS) * time.Second
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

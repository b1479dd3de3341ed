package config

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

type Config struct {
	MinIOBucket   string         `yaml:"minio_bucket"`
	App           App            `yaml:"app"`
	DB            *sql.DB        `yaml:"db"`
	Queue         *RabbitMQ      `yaml:"rabbitmq"`
	Storage       *minio.Client  `yaml:"storage"`
	Server        Server         `yaml:"server"`
	Pipeline      Pipeline       `yaml:"pipeline"`
	Transcription Transcription  `yaml:"transcription"`
	Diarization   Diarization    `yaml:"diarization"`
	Generation    Generation     `yaml:"generation"`
}

type App struct {
	Environment string `yaml:"environment"`
	Host        string `yaml:"host"`
	Protocol    string `yaml:"protocol"`
}

type Server struct {
	HttpPort string `yaml:"http_port"`
	Workers  int    `yaml:"workers"`
}

type RabbitMQ struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Pass         string `json:"pass"`
	ExchangeName string `json:"exchange_name"`
	Kind         string `json:"kind"`
}

// Pipeline bounds the blast radius from a misbehaving external dependency.
// Values are fixed per deployment, never per job.
type Pipeline struct {
	MaxAttempts        uint          `yaml:"max_attempts"`
	InitialBackoff     time.Duration `yaml:"initial_backoff"`
	JobsPerMinute      int           `yaml:"jobs_per_minute"`
	CompletedRetention time.Duration `yaml:"completed_retention"`
	CompletedKeep      int           `yaml:"completed_keep"`
	FailedRetention    time.Duration `yaml:"failed_retention"`
}

type Transcription struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type Diarization struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Generation struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("pipeline.max_attempts", 3)
	viper.SetDefault("pipeline.initial_backoff", "5s")
	viper.SetDefault("pipeline.jobs_per_minute", 10)
	viper.SetDefault("pipeline.completed_retention", "24h")
	viper.SetDefault("pipeline.completed_keep", 1000)
	viper.SetDefault("pipeline.failed_retention", "168h")
	viper.SetDefault("server.workers", 2)
	viper.SetDefault("transcription.timeout", "120s")
	viper.SetDefault("diarization.timeout", "30s")
	viper.SetDefault("generation.timeout", "60s")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", viper.GetString("postgresql_host"))
	if err != nil {
		return nil, err
	}

	rabbitmq := &RabbitMQ{
		Host: viper.GetString("rabbitmq_host"),
		Port: viper.GetInt("rabbitmq_port"),
		User: viper.GetString("rabbitmq_user"),
		Pass: viper.GetString("rabbitmq_pass"),
		Kind: viper.GetString("rabbitmq_kind"),
	}

	minioClient, err := minio.New(viper.GetString("minio.url"), &minio.Options{
		Creds:  credentials.NewStaticV4(viper.GetString("minio.access_id"), viper.GetString("minio.secret_access_key"), ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}

	return &Config{
		MinIOBucket: viper.GetString("minio.bucket"),
		App: App{
			Environment: viper.GetString("app.environment"),
			Host:        viper.GetString("app.host"),
			Protocol:    viper.GetString("app.protocol"),
		},
		Server: Server{
			HttpPort: viper.GetString("server.port"),
			Workers:  viper.GetInt("server.workers"),
		},
		Pipeline: Pipeline{
			MaxAttempts:        viper.GetUint("pipeline.max_attempts"),
			InitialBackoff:     viper.GetDuration("pipeline.initial_backoff"),
			JobsPerMinute:      viper.GetInt("pipeline.jobs_per_minute"),
			CompletedRetention: viper.GetDuration("pipeline.completed_retention"),
			CompletedKeep:      viper.GetInt("pipeline.completed_keep"),
			FailedRetention:    viper.GetDuration("pipeline.failed_retention"),
		},
		Transcription: Transcription{
			URL:     viper.GetString("transcription.url"),
			APIKey:  viper.GetString("transcription.api_key"),
			Timeout: viper.GetDuration("transcription.timeout"),
		},
		Diarization: Diarization{
			URL:     viper.GetString("diarization.url"),
			Timeout: viper.GetDuration("diarization.timeout"),
		},
		Generation: Generation{
			URL:     viper.GetString("generation.url"),
			APIKey:  viper.GetString("generation.api_key"),
			Model:   viper.GetString("generation.model"),
			Timeout: viper.GetDuration("generation.timeout"),
		},
		DB:      db,
		Queue:   rabbitmq,
		Storage: minioClient,
	}, nil
}

package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Address        string        `yaml:"address"`
	ThreadsPerPage int           `yaml:"threads_per_page"`
	ThreadCacheTTL time.Duration `yaml:"thread_cache_ttl"` // seconds, multiplied at use site
	MaxBodyLength  int           `yaml:"max_body_length"`
	AuthorCountry  bool          `yaml:"author_country"` // stamp posts with a geolocated country code
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
}

type Private struct {
	Pg          Pg     `yaml:"pg"`
	AuthorIdKey string `yaml:"author_id_key"` // secret for per-thread author pseudonyms
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

func (s *Config) AuthorIdKey() string {
	return s.Private.AuthorIdKey
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyDefaults()
	return cfg
}

func (s *Config) applyDefaults() {
	if s.Public.ThreadsPerPage == 0 {
		s.Public.ThreadsPerPage = 10
	}
	if s.Public.ThreadCacheTTL == 0 {
		s.Public.ThreadCacheTTL = 30
	}
	if s.Public.MaxBodyLength == 0 {
		s.Public.MaxBodyLength = 20000
	}
	if s.Public.Address == "" {
		s.Public.Address = ":8080"
	}
}

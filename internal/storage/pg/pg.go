package pg

import (
	"database/sql"
	"fmt"
	"net/netip"
	"strings"

	"github.com/ochan-dev/ochan/internal/config"
	"github.com/ochan-dev/ochan/internal/logger"

	_ "github.com/lib/pq"
)

type Storage struct {
	db  *sql.DB
	cfg *config.Config
}

func New(cfg *config.Config) (*Storage, error) {
	logger.Log.Info("connecting to db")
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("successfully connected to db")
	return &Storage{db, cfg}, nil
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Private.Pg.Host, cfg.Private.Pg.Port, cfg.Private.Pg.User, cfg.Private.Pg.Password, cfg.Private.Pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// parseInet converts postgres inet text output to a netip.Addr. Host
// addresses come back bare, subnets with a mask suffix.
func parseInet(value string) (netip.Addr, error) {
	if i := strings.IndexByte(value, '/'); i >= 0 {
		value = value[:i]
	}
	return netip.ParseAddr(value)
}

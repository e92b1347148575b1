package main

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"codemint.backend/internal/config"
	"codemint.backend/internal/infrastructure/blockchain"
	plog "codemint.backend/pkg/logger"
)

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv := loadDotenv
	origLoadCfg := loadCfg
	origInitLog := initLog
	origInitRedis := initRedis
	origOpenDB := openDB
	origDialEVM := dialEVM
	origRunServer := runServer

	t.Cleanup(func() {
		loadDotenv = origLoadDotenv
		loadCfg = origLoadCfg
		initLog = origInitLog
		initRedis = origInitRedis
		openDB = origOpenDB
		dialEVM = origDialEVM
		runServer = origRunServer
	})
}

func baseTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port: "18080",
			Env:  "development",
		},
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			DBName:   "codemint",
			SSLMode:  "disable",
		},
		Redis: config.RedisConfig{
			URL:      "redis://localhost:6379",
			PASSWORD: "",
		},
		Registry: config.RegistryConfig{
			Network:             "sepolia",
			RPCURL:              "http://localhost:8545",
			ContractAddress:     "0x0000000000000000000000000000000000000001",
			ConfirmationTimeout: 2 * time.Minute,
			MaxParameters:       16,
		},
		Pinning: config.PinningConfig{
			APIBaseURL: "http://localhost:3001",
			APIKey:     "",
		},
		Gateway: config.GatewayConfig{
			Host:          "ipfs.io",
			SubdomainHost: "dweb.link",
		},
		Views: config.ViewConfig{
			PageCap:          1000,
			FetchConcurrency: 8,
			RefreshInterval:  time.Hour,
			MetadataCacheTTL: time.Hour,
		},
	}
}

func stubEVM(string) (*blockchain.EVMClient, error) {
	callView := func(context.Context, string, []byte) ([]byte, error) {
		return nil, errors.New("no chain in unit tests")
	}
	return blockchain.NewEVMClientWithCallView(big.NewInt(11155111), callView, nil), nil
}

func TestRunMainProcess_DBOpenError(t *testing.T) {
	withMainHooks(t)

	loadDotenv = func(...string) error { return nil }
	loadCfg = baseTestConfig
	initLog = plog.Init
	initRedis = func(string, string) error { return errors.New("redis down") }
	openDB = func(string) (*gorm.DB, error) { return nil, errors.New("db open failed") }

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected db open error")
	}
}

func TestRunMainProcess_ChainDialError(t *testing.T) {
	withMainHooks(t)

	loadDotenv = func(...string) error { return nil }
	loadCfg = baseTestConfig
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	openDB = func(string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:main_chain_err?mode=memory&cache=shared"), &gorm.Config{})
	}
	dialEVM = func(string) (*blockchain.EVMClient, error) { return nil, errors.New("rpc unreachable") }

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected chain dial error")
	}
}

func TestRunMainProcess_ServerRunError(t *testing.T) {
	withMainHooks(t)

	loadDotenv = func(...string) error { return nil }
	loadCfg = baseTestConfig
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	openDB = func(string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:main_server_err?mode=memory&cache=shared"), &gorm.Config{})
	}
	dialEVM = stubEVM
	runServer = func(*gin.Engine, string) error { return errors.New("listen failed") }

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected server run error")
	}
}

func TestRunMainProcess_SuccessPath(t *testing.T) {
	withMainHooks(t)

	loadDotenv = func(...string) error { return nil }
	loadCfg = baseTestConfig
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	openDB = func(string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:main_success?mode=memory&cache=shared"), &gorm.Config{})
	}
	dialEVM = stubEVM
	runServer = func(*gin.Engine, string) error { return nil }

	if err := runMainProcess(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

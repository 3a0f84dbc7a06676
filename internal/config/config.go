package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"

	"apoiasync/entity"
)

type Listen struct {
	BindIp string `yaml:"bind_ip" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env-default:"8080"`
}

type MySqlConfig struct {
	HostName string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"3306"`
	UserName string `yaml:"user" env-default:""`
	Password string `yaml:"password" env-default:""`
	Database string `yaml:"database" env-default:"apoiasync"`
}

type MongoConfig struct {
	Enabled  bool   `yaml:"enabled" env-default:"false"`
	Host     string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"27017"`
	User     string `yaml:"user" env-default:""`
	Password string `yaml:"password" env-default:""`
	Database string `yaml:"database" env-default:"apoiasync"`
}

type TelegramConfig struct {
	Enabled  bool    `yaml:"enabled" env-default:"false"`
	ApiKey   string  `yaml:"api_key" env-default:""`
	AdminIds []int64 `yaml:"admin_ids"`
}

type ApoiaSeConfig struct {
	// Enabled switches the reconciliation source from the built-in
	// fixture data to the real platform API.
	Enabled    bool   `yaml:"enabled" env-default:"false"`
	Url        string `yaml:"url" env-default:"https://apoia.se/api"`
	Token      string `yaml:"token" env-default:""`
	TimeoutSec int    `yaml:"timeout_sec" env-default:"30"`
}

type SyncConfig struct {
	IntervalMin int `yaml:"interval_min" env-default:"60"`
}

type Config struct {
	Listen   Listen         `yaml:"listen"`
	MySql    MySqlConfig    `yaml:"mysql"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Telegram TelegramConfig `yaml:"telegram"`
	ApoiaSe  ApoiaSeConfig  `yaml:"apoiase"`
	Sync     SyncConfig     `yaml:"sync"`
	Env      string         `yaml:"env" env-default:"local"`
	// Campaigns is the administrative seed list; every entry is upserted
	// into the roster store on startup.
	Campaigns []entity.Campaign `yaml:"campaigns"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("config: %s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}

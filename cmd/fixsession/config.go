/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"time"

	"github.com/spf13/viper"
)

// fileConfig is the shape of config.yaml, unmarshalled by viper. Field
// names are capitalized to match viper's default case-insensitive key
// matching against lowercase yaml keys.
type fileConfig struct {
	Addr string

	SenderCompID string
	TargetCompID string
	Username     string
	Password     string

	HeartBtInt           int
	LogonTimeoutMs       int
	LogoutTimeoutMs      int
	MaxReconnectAttempts int
	ReconnectIntervalMs  int
	ResetSeqNumOnLogon   bool

	Store     string // "null", "memory", "badger"
	StorePath string // badger dir, when Store == "badger"
	AuditLog  string // sqlite path, empty disables audit logging

	KafkaBroker string // empty disables the Kafka sink
	KafkaTopic  string

	MetricsAddr string // empty disables the /metrics HTTP listener
	MonitorAddr string // empty disables the websocket monitor listener
}

func (c fileConfig) logonTimeout() time.Duration {
	return time.Duration(c.LogonTimeoutMs) * time.Millisecond
}

func (c fileConfig) logoutTimeout() time.Duration {
	return time.Duration(c.LogoutTimeoutMs) * time.Millisecond
}

func (c fileConfig) reconnectInterval() time.Duration {
	return time.Duration(c.ReconnectIntervalMs) * time.Millisecond
}

// loadConfig reads config.yaml from the given path (directory), applying
// the same defaults a freshly-installed session would want, then lets
// environment variables of the form FIXSESSION_<KEY> override anything
// the file sets.
func loadConfig(path string) (fileConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvPrefix("FIXSESSION")
	v.AutomaticEnv()

	v.SetDefault("Addr", "127.0.0.1:9878")
	v.SetDefault("SenderCompID", "NEXUSFIX")
	v.SetDefault("TargetCompID", "EXCHANGE")
	v.SetDefault("HeartBtInt", 30)
	v.SetDefault("LogonTimeoutMs", 10_000)
	v.SetDefault("LogoutTimeoutMs", 5_000)
	v.SetDefault("MaxReconnectAttempts", 5)
	v.SetDefault("ReconnectIntervalMs", 1_000)
	v.SetDefault("Store", "memory")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fileConfig{}, err
		}
		// No config.yaml on disk is fine; defaults plus env vars carry
		// the session, matching how a throwaway test session is run.
	}

	var cfg fileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

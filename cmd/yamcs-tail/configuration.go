// SPDX-FileCopyrightText: 2026 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"

	"github.com/dtn7/yamcs-go/pkg/message"
	"github.com/dtn7/yamcs-go/pkg/socket"
)

// tomlConfig describes the TOML-configuration.
type tomlConfig struct {
	Connection   connectionConf
	Logging      logConf
	Archive      archiveConf
	Http         httpConf
	Subscription []subscriptionConf
}

// connectionConf describes the Connection-configuration block.
type connectionConf struct {
	Url           string
	DialTimeout   string `toml:"dial-timeout"`
	CancelTimeout string `toml:"cancel-timeout"`
}

// logConf describes the Logging-configuration block.
type logConf struct {
	Level        string
	ReportCaller bool `toml:"report-caller"`
	Format       string
}

// archiveConf describes the optional Archive-configuration block. An empty Dir disables the archive.
type archiveConf struct {
	Dir       string
	Retention string
}

// httpConf describes the optional HTTP status server. An empty Listen disables the server.
type httpConf struct {
	Listen string
}

// subscriptionConf describes one "subscription" block. Only the fields required by the Kind are used.
type subscriptionConf struct {
	Name      string
	Kind      string
	Instance  string
	Processor string

	Stream     string
	Names      []string
	Parameters []string

	IncludePending     bool `toml:"include-pending"`
	IgnorePastCommands bool `toml:"ignore-past-commands"`
	SendFromCache      bool `toml:"send-from-cache"`
}

// options creates the subscription request's options.
func (sc subscriptionConf) options() (message.Options, error) {
	switch message.Kind(sc.Kind) {
	case message.KindTime:
		return message.TimeRequest{Instance: sc.Instance, Processor: sc.Processor}, nil

	case message.KindPackets:
		return message.PacketsRequest{Instance: sc.Instance, Processor: sc.Processor, Stream: sc.Stream}, nil

	case message.KindParameters:
		ids := make([]message.NamedObjectID, len(sc.Parameters))
		for i, name := range sc.Parameters {
			ids[i] = message.NamedObjectID{Name: name}
		}
		return message.ParametersRequest{
			Instance:      sc.Instance,
			Processor:     sc.Processor,
			ID:            ids,
			SendFromCache: sc.SendFromCache,
		}, nil

	case message.KindContainers:
		return message.ContainersRequest{Instance: sc.Instance, Processor: sc.Processor, Names: sc.Names}, nil

	case message.KindLinks:
		return message.LinksRequest{Instance: sc.Instance}, nil

	case message.KindStream:
		return message.StreamRequest{Instance: sc.Instance, Stream: sc.Stream}, nil

	case message.KindAlarms:
		return message.AlarmsRequest{Instance: sc.Instance, Processor: sc.Processor, IncludePending: sc.IncludePending}, nil

	case message.KindEvents:
		return message.EventsRequest{Instance: sc.Instance}, nil

	case message.KindCommands:
		return message.CommandsRequest{
			Instance:           sc.Instance,
			Processor:          sc.Processor,
			IgnorePastCommands: sc.IgnorePastCommands,
		}, nil

	default:
		return nil, fmt.Errorf("subscription %q has unknown kind %q", sc.Name, sc.Kind)
	}
}

// checkValid reports all problems of this subscription block.
func (sc subscriptionConf) checkValid() (errs error) {
	if sc.Name == "" {
		errs = multierror.Append(errs, fmt.Errorf("subscription without a name"))
	}

	if sc.Instance == "" {
		errs = multierror.Append(errs, fmt.Errorf("subscription %q: instance is empty", sc.Name))
	}

	if _, err := sc.options(); err != nil {
		errs = multierror.Append(errs, err)
		return
	}

	switch message.Kind(sc.Kind) {
	case message.KindTime, message.KindParameters, message.KindContainers, message.KindAlarms, message.KindCommands:
		if sc.Processor == "" {
			errs = multierror.Append(errs, fmt.Errorf("subscription %q: %s requires a processor", sc.Name, sc.Kind))
		}

	case message.KindPackets:
		if (sc.Processor == "") == (sc.Stream == "") {
			errs = multierror.Append(errs, fmt.Errorf("subscription %q: packets requires either a processor or a stream", sc.Name))
		}

	case message.KindStream:
		if sc.Stream == "" {
			errs = multierror.Append(errs, fmt.Errorf("subscription %q: stream requires a stream", sc.Name))
		}
	}

	if message.Kind(sc.Kind) == message.KindParameters && len(sc.Parameters) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("subscription %q: no parameters listed", sc.Name))
	}

	return
}

// checkValid reports all problems of the configuration at once.
func (conf tomlConfig) checkValid() (errs error) {
	if conf.Connection.Url == "" {
		errs = multierror.Append(errs, fmt.Errorf("connection.url is empty"))
	}

	for field, value := range map[string]string{
		"connection.dial-timeout":   conf.Connection.DialTimeout,
		"connection.cancel-timeout": conf.Connection.CancelTimeout,
		"archive.retention":         conf.Archive.Retention,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	names := make(map[string]struct{})
	for _, sc := range conf.Subscription {
		if err := sc.checkValid(); err != nil {
			errs = multierror.Append(errs, err)
		}

		if _, known := names[sc.Name]; known {
			errs = multierror.Append(errs, fmt.Errorf("subscription name %q is used twice", sc.Name))
		}
		names[sc.Name] = struct{}{}
	}

	return
}

// duration parses an already validated duration, falling back to the default for empty values.
func duration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return fallback
}

// socketOptions derived from the Connection-configuration block.
func (conf tomlConfig) socketOptions() []socket.Option {
	return []socket.Option{
		socket.WithCancelTimeout(duration(conf.Connection.CancelTimeout, socket.DefaultCancelTimeout)),
	}
}

// parseConfig reads and validates the TOML configuration.
func parseConfig(filename string) (conf tomlConfig, err error) {
	if _, err = toml.DecodeFile(filename, &conf); err != nil {
		return
	}

	err = conf.checkValid()
	return
}

// setupLogging applies the Logging-configuration block.
func setupLogging(conf logConf) {
	if conf.Level != "" {
		if lvl, err := log.ParseLevel(conf.Level); err != nil {
			log.WithFields(log.Fields{
				"level":    conf.Level,
				"error":    err,
				"provided": "panic,fatal,error,warn,info,debug,trace",
			}).Warn("Failed to set log level. Please select one of the provided ones")
		} else {
			log.SetLevel(lvl)
		}
	}

	log.SetReportCaller(conf.ReportCaller)

	switch conf.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})

	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})

	default:
		log.Warn("Unknown logging format")
	}
}

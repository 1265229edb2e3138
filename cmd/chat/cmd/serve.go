/*
   chat is a websocket chat server
   Copyright (C) 2019 Timothy Drysdale <timothy.d.drysdale@gmail.com>

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as
   published by the Free Software Foundation, either version 3 of the
   License, or (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package cmd

import (
	"fmt"
	"net/http"
	_ "net/http/pprof" //ok in production https://medium.com/google-cloud/continuous-profiling-of-go-programs-96d4416af77b
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/client9/reopen"
	"github.com/practable/chat/internal/relay"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the chat server",
	Long: `Serve runs the chat server. Clients connect with websockets on /ws.
Set parameters with environment variables, for example:

export CHAT_HOST=0.0.0.0
export CHAT_PORT=3000
export CHAT_LOG_LEVEL=warn
export CHAT_LOG_FORMAT=json
export CHAT_LOG_FILE=/var/log/chat/chat.log
export CHAT_STATIC_DIR=/var/www/chat
export CHAT_ALLOWED_ORIGINS=https://example.org,https://www.example.org
export CHAT_REQUIRE_REGISTRATION=false
export CHAT_IDENTIFY_BY_ID=false
export CHAT_MAX_NAME_LENGTH=32
export CHAT_MAX_MESSAGE_LENGTH=1000
export CHAT_DROP_BLANK_MESSAGES=true
export CHAT_MAX_FRAME_SIZE=8192
export CHAT_RATE_LIMIT=20
export CHAT_RATE_BURST=40
export CHAT_CLIENT_BUFFER=256
export CHAT_PROFILE=true
export CHAT_PORT_PROFILE=6061
chat serve

Notes:
CHAT_LOG_FILE=stdout logs to stdout; a log file is reopened on SIGHUP, for logrotate
CHAT_REQUIRE_REGISTRATION=true ignores messages and typing from clients without a username
CHAT_IDENTIFY_BY_ID=true names each client by its connection id, with no usernames
`,
	Run: func(cmd *cobra.Command, args []string) {

		viper.SetEnvPrefix("CHAT")
		viper.AutomaticEnv()

		defaults := relay.NewDefaultConfig()

		viper.SetDefault("allowed_origins", "")
		viper.SetDefault("client_buffer", defaults.ClientBuffer)
		viper.SetDefault("host", "")
		viper.SetDefault("drop_blank_messages", defaults.DropBlankMessages)
		viper.SetDefault("identify_by_id", false)
		viper.SetDefault("log_file", "stdout")
		viper.SetDefault("log_format", "json")
		viper.SetDefault("log_level", "warn")
		viper.SetDefault("max_frame_size", defaults.MaxMessageSize)
		viper.SetDefault("max_message_length", defaults.MaxMessageLength)
		viper.SetDefault("max_name_length", defaults.MaxNameLength)
		viper.SetDefault("port", defaults.Port)
		viper.SetDefault("port_profile", 6061)
		viper.SetDefault("profile", false)
		viper.SetDefault("rate_burst", defaults.RateBurst)
		viper.SetDefault("rate_limit", defaults.RateLimit)
		viper.SetDefault("require_registration", false)
		viper.SetDefault("static_dir", "")

		allowedOrigins := viper.GetString("allowed_origins")
		clientBuffer := viper.GetInt("client_buffer")
		dropBlankMessages := viper.GetBool("drop_blank_messages")
		host := viper.GetString("host")
		identifyByID := viper.GetBool("identify_by_id")
		logFile := viper.GetString("log_file")
		logFormat := viper.GetString("log_format")
		logLevel := viper.GetString("log_level")
		maxFrameSize := viper.GetInt64("max_frame_size")
		maxMessageLength := viper.GetInt("max_message_length")
		maxNameLength := viper.GetInt("max_name_length")
		port := viper.GetInt("port")
		portProfile := viper.GetInt("port_profile")
		profile := viper.GetBool("profile")
		rateBurst := viper.GetInt("rate_burst")
		rateLimit := viper.GetFloat64("rate_limit")
		requireRegistration := viper.GetBool("require_registration")
		staticDir := viper.GetString("static_dir")

		// set up logging
		switch strings.ToLower(logLevel) {
		case "trace":
			log.SetLevel(log.TraceLevel)
		case "debug":
			log.SetLevel(log.DebugLevel)
		case "info":
			log.SetLevel(log.InfoLevel)
		case "warn":
			log.SetLevel(log.WarnLevel)
		case "error":
			log.SetLevel(log.ErrorLevel)
		case "fatal":
			log.SetLevel(log.FatalLevel)
		case "panic":
			log.SetLevel(log.PanicLevel)
		default:
			fmt.Println("CHAT_LOG_LEVEL can be trace, debug, info, warn, error, fatal or panic but not " + logLevel)
			os.Exit(1)
		}

		switch strings.ToLower(logFormat) {
		case "json":
			log.SetFormatter(&log.JSONFormatter{})
		case "text":
			log.SetFormatter(&log.TextFormatter{})
		default:
			fmt.Println("CHAT_LOG_FORMAT can be json or text but not " + logFormat)
			os.Exit(1)
		}

		var logWriter *reopen.FileWriter

		if strings.ToLower(logFile) == "stdout" {

			log.SetOutput(os.Stdout)

		} else {

			w, err := reopen.NewFileWriter(logFile)
			if err == nil {
				logWriter = w
				log.SetOutput(w)
			} else {
				log.Infof("Failed to log to %s, logging to default stderr", logFile)
			}
		}

		config := relay.Config{
			Port:                port,
			Host:                host,
			StaticDir:           staticDir,
			AllowedOrigins:      splitList(allowedOrigins),
			ClientBuffer:        clientBuffer,
			RateLimit:           rateLimit,
			RateBurst:           rateBurst,
			MaxMessageSize:      maxFrameSize,
			RequireRegistration: requireRegistration,
			IdentifyByID:        identifyByID,
			MaxNameLength:       maxNameLength,
			MaxMessageLength:    maxMessageLength,
			DropBlankMessages:   dropBlankMessages,
		}

		if err := config.Validate(); err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}

		// Report useful info
		log.Infof("chat version: %s", versionString())
		log.Infof("Allowed origins: [%s]", allowedOrigins)
		log.Infof("Client buffer: [%d]", clientBuffer)
		log.Infof("Drop blank messages: [%t]", dropBlankMessages)
		log.Infof("Host: [%s]", host)
		log.Infof("Identify by ID: [%t]", identifyByID)
		log.Infof("Log file: [%s]", logFile)
		log.Infof("Log format: [%s]", logFormat)
		log.Infof("Log level: [%s]", logLevel)
		log.Infof("Max frame size: [%d]", maxFrameSize)
		log.Infof("Max message length: [%d]", maxMessageLength)
		log.Infof("Max name length: [%d]", maxNameLength)
		log.Infof("Port: [%d]", port)
		log.Infof("Port for profile: [%d]", portProfile)
		log.Infof("Profiling is on: [%t]", profile)
		log.Infof("Rate limit: [%g/s, burst %d]", rateLimit, rateBurst)
		log.Infof("Require registration: [%t]", requireRegistration)
		log.Infof("Static dir: [%s]", staticDir)

		// Optionally start the profiling server
		if profile {
			go func() {
				url := "localhost:" + strconv.Itoa(portProfile)
				err := http.ListenAndServe(url, nil)
				if err != nil {
					log.Error(err.Error())
				}
			}()
		}

		var wg sync.WaitGroup

		closed := make(chan struct{})

		c := make(chan os.Signal, 1)

		signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

		go func() {
			for sig := range c {
				if sig == syscall.SIGHUP {
					if logWriter != nil {
						if err := logWriter.Reopen(); err != nil {
							fmt.Println("failed to reopen log file: " + err.Error())
						}
					}
					continue
				}
				close(closed)
				wg.Wait()
				os.Exit(0)
			}
		}()

		wg.Add(1)

		go relay.Relay(closed, &wg, config)

		wg.Wait()

	},
}

// splitList splits a comma separated list, dropping empty entries
func splitList(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

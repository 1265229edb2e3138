// Package relay runs a chat server: the manager's event loop and the
// websocket crossbar in front of it
package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/practable/chat/internal/chat"
	"github.com/practable/chat/internal/crossbar"
	"github.com/practable/chat/internal/hub"
	log "github.com/sirupsen/logrus"
)

var validate = validator.New()

// Config represents the configuration of a chat server
type Config struct {
	Port           int      `validate:"min=1,max=65535"`
	Host           string   `validate:"omitempty,hostname|ip"`
	StaticDir      string   `validate:"omitempty,dir"`
	AllowedOrigins []string `validate:"dive,url"`

	ClientBuffer   int     `validate:"min=1"`
	RateLimit      float64 `validate:"gte=0"`
	RateBurst      int     `validate:"gte=0"`
	MaxMessageSize int64   `validate:"gte=0"`

	RequireRegistration bool
	IdentifyByID        bool
	MaxNameLength       int `validate:"gte=0"`
	MaxMessageLength    int `validate:"gte=0"`
	DropBlankMessages   bool
}

// NewDefaultConfig returns a Config with the defaults of its components
func NewDefaultConfig() Config {

	cb := crossbar.NewDefaultConfig()
	cc := chat.NewDefaultConfig()

	return Config{
		Port:              cb.Listen,
		ClientBuffer:      cb.ClientBuffer,
		RateLimit:         cb.RateLimit,
		RateBurst:         cb.RateBurst,
		MaxMessageSize:    cb.MaxMessageSize,
		MaxNameLength:     cc.MaxNameLength,
		MaxMessageLength:  cc.MaxMessageLength,
		DropBlankMessages: cc.DropBlankMessages,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Relay runs a chat server until closed is closed
func Relay(closed <-chan struct{}, parentwg *sync.WaitGroup, config Config) {

	defer parentwg.Done()

	var wg, cbwg sync.WaitGroup

	h := hub.New()

	chatConfig := chat.NewDefaultConfig().
		WithRequireRegistration(config.RequireRegistration).
		WithIdentifyByID(config.IdentifyByID).
		WithMaxNameLength(config.MaxNameLength).
		WithMaxMessageLength(config.MaxMessageLength).
		WithDropBlankMessages(config.DropBlankMessages)

	m := chat.New(chatConfig, h)

	ctx, cancel := context.WithCancel(context.Background())

	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Run(ctx)
	}()

	crossbarConfig := crossbar.NewDefaultConfig().
		WithListen(config.Port).
		WithHost(config.Host).
		WithStaticDir(config.StaticDir).
		WithAllowedOrigins(config.AllowedOrigins).
		WithClientBuffer(config.ClientBuffer).
		WithRateLimit(config.RateLimit, config.RateBurst).
		WithMaxMessageSize(config.MaxMessageSize).
		WithManager(m).
		WithHub(h)

	cbwg.Add(1)
	go crossbar.Crossbar(*crossbarConfig, closed, &cbwg)

	log.WithFields(log.Fields{
		"port":                config.Port,
		"requireRegistration": config.RequireRegistration,
		"identifyByID":        config.IdentifyByID,
	}).Info("relay: started")

	<-closed

	// connections disconnect through the manager, so stop it last
	cbwg.Wait()
	cancel()

	wg.Wait()
	log.Trace("Relay done")
}

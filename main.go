package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	cfg "github.com/mailio/go-web3-kit/config"
	w3srv "github.com/mailio/go-web3-kit/gingonic"
	"github.com/redis/go-redis/v9"
	"github.com/zynexa/go-zynexa-server/apiroutes"
	"github.com/zynexa/go-zynexa-server/docs"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/types"
	"golang.org/x/sys/unix"
)

// @title Zynexa Server API
// @version 1.0
// @description Signature authenticated identities, feature gates and ledger memo relay

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
func main() {
	var (
		configFile string
	)
	// configuration file optional path. Default:  current dir with  filename conf.yaml
	flag.StringVar(&configFile, "c", "conf.yaml", "Configuration file path.")
	flag.StringVar(&configFile, "config", "conf.yaml", "Configuration file path.")
	flag.Usage = usage
	flag.Parse()

	// loading configuration file
	err := cfg.NewYamlConfig(configFile, &global.Conf)
	if err != nil {
		global.Logger.Log(err, "conf.yaml failed to load")
		panic("Failed to load conf.yaml")
	}
	global.Conf.ApplyEnvironment()
	global.Conf.ApplyDefaults()

	loadSessionKey(&global.Conf)

	var redisClient *redis.Client
	if redisConfigured(&global.Conf) {
		rrClient := initRedisRateLimiter(&global.Conf)
		defer rrClient.Close()

		redisClient = newRedisClient(&global.Conf, 0)
		defer redisClient.Close()
	}

	env := types.NewEnvironment(redisClient)
	defer env.Cron.Stop()

	// programmatically set swagger info
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", global.Conf.Host, global.Conf.Port)
	docs.SwaggerInfo.Schemes = []string{global.Conf.Scheme}

	// server wait to shutdown monitoring channels
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, os.Interrupt, unix.SIGTERM)

	store := ConfigStore(&global.Conf)
	defer store.Close()

	// init routing (for RESTful API endpoints)
	router := w3srv.NewAPIRouter(&global.Conf.YamlConfig)

	// configure routes
	router = apiroutes.ConfigRoutes(router, apiroutes.Dependencies{
		Store:        store,
		SessionStore: ConfigSessionStore(env),
		Relay:        ConfigRelay(&global.Conf),
		ReplayGuard:  ConfigReplayGuard(&global.Conf, env),
		SessionKey:   global.SessionPrivateKey,
	})

	// start server
	srv := w3srv.Start(&global.Conf.YamlConfig, router)
	// wait for server shutdown
	go w3srv.Shutdown(srv, quit, done)

	global.Logger.Log("Server is ready to handle requests at", global.Conf.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("%v\n", err))
	}

	<-done

}

// usage will print out the flag options for the server.
func usage() {
	usageStr := `Usage: zynexa-server [options]
	Server Options:
	-c, --config <file>              Configuration file path
`
	fmt.Printf("%s\n", usageStr)
	os.Exit(0)
}

package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/approvd/approvd/agent"
	"github.com/approvd/approvd/config"
	"github.com/approvd/approvd/logger"
)

type cfg struct {
	config.Config
}
type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().String("definition-file", "flow.json", "path to the flow definition file")
	cmd.Flags().String("storage-impl", "memory", "implementation of the request store")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "approvd", "namespace used in storage and notification channels")
	cmd.Flags().String("notifier-impl", "log", "implementation of the notifier")
	cmd.Flags().Int("notifier-capacity", 128, "notification dispatcher buffer capacity")
	cmd.Flags().Int("retention-minutes", 60, "minutes a finished request stays retrievable in the memory store")
	cmd.Flags().String("decision-log", "", "path to the decision log file, empty disables it")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	var err error

	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)

	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.DefinitionFile = viper.GetString("definition-file")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.NotifierType = config.NotifierType(viper.GetString("notifier-impl"))
	c.cfg.NotifierCapacity = viper.GetInt("notifier-capacity")
	c.cfg.Retention = time.Duration(viper.GetInt("retention-minutes")) * time.Minute
	c.cfg.DecisionLogFile = viper.GetString("decision-log")
	c.cfg.TimerTick = time.Second
	c.cfg.TimerWheelSize = 3600
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	if err := logger.InitLogger(); err != nil {
		return err
	}
	agent, err := agent.New(c.cfg.Config)
	if err != nil {
		panic(err)
	}
	err = agent.Start()
	if err != nil {
		panic(err)
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	return agent.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "approvd",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"perfoverlay/attention"
	"perfoverlay/conf"
	"perfoverlay/host"
	"perfoverlay/logging"
	"perfoverlay/sink"
	"perfoverlay/sys/cpu"
)

func main() {
	app := cli.NewApp()
	app.Name = "perfoverlay"
	app.Usage = "frame time and fps overlay that shows itself when performance changes"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config,c",
			Usage: "config file (yaml, json or toml)",
		},
	}
	app.Action = start
	if err := app.Run(os.Args); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func start(c *cli.Context) error {
	path := c.String("config")
	v, cfg, err := conf.Load(path)
	if err != nil {
		return err
	}

	log, level, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	console := sink.NewConsole(log.Named("console"))
	sinks := attention.Sinks{console}
	publishers := []host.Publisher{console}

	if cfg.Redis.Enable {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Wrapf(err, "redis %s", cfg.Redis.Addr)
		}
		rs := sink.NewRedis(client, cfg.Redis.Channel, log.Named("redis"))
		sinks = append(sinks, rs)
		publishers = append(publishers, rs)
		wg.Add(1)
		go func() {
			defer wg.Done()
			rs.Run(ctx)
		}()
	}

	opts := host.Options{
		Logger:     log,
		Level:      &level,
		Sinks:      sinks,
		Publishers: publishers,
	}
	if cfg.Host.CPU {
		if opts.CPU, err = cpu.Self(); err != nil {
			log.Warn("cpu usage disabled", zap.Error(err))
		}
	}

	h, err := host.New(cfg, opts)
	if err != nil {
		return err
	}
	if path != "" {
		conf.Watch(v, log, h.Reload)
	}

	err = h.Run(ctx)
	stop()
	wg.Wait()
	return err
}

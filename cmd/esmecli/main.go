package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/nxsms/esme/esme"
)

func main() {
	var path string
	flag.StringVar(&path, "config", "", "path to TOML config file")
	flag.Parse()

	logger := logrus.New()

	cfg, err := loadConfig(path)
	if err != nil {
		logger.Fatal(err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal(err)
	}
	logger.SetLevel(level)
	esme.SetLogger(logger)

	dial := esme.DefaultDial
	if cfg.UseTls {
		dial = esme.DefaultTlsDial
	}

	closed := make(chan struct{}, 1)

	sess, err := esme.NewSession(
		esme.NewClientConnection(esme.ClientConnectionConfig{
			Dial: dial,
			Smsc: cfg.Smsc,
		}),
		esme.SessionConfig{
			EnquireLink: cfg.EnquireLink(),
			WindowSize:  cfg.WindowSize,
			OnReceive: func(_ *esme.Session, msg esme.Message) {
				logger.Infof("Received message, from: %s, to: %s, content: %s", msg.From.Number, msg.To.Number, msg.Content)
			},
			OnDlr: func(_ *esme.Session, dlr esme.Dlr) {
				logger.Infof("Received receipt, message id: %s, stat: %s, err: %s", dlr.Id, dlr.Stat, dlr.Err)
			},
			OnClosed: func(_ *esme.Session, reason string, desc string) {
				logger.Infof("Session closed, reason: %s, desc: %s", reason, desc)
				closed <- struct{}{}
			},
		},
	)
	if err != nil {
		logger.Fatal(err)
	}

	mode, _ := parseMode(cfg.Mode)
	err = sess.Bind(esme.BindConfig{
		SystemId:   cfg.SystemId,
		Password:   cfg.Password,
		SystemType: cfg.SystemType,
		Mode:       mode,
		AddrTon:    1,
		AddrNpi:    1,
	})
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infof("Bound to %s as %s (%s)", cfg.Smsc, cfg.SystemId, mode)

	if cfg.Text != "" {
		receipt, serr := sess.SendMessage(esme.Message{
			Content:    cfg.Text,
			To:         esme.NewDid(cfg.To),
			From:       esme.NewDid(cfg.From),
			RequestDlr: true,
		})
		if serr != nil {
			logger.Fatal(serr)
		}
		ack := receipt.Wait()
		switch {
		case ack.Err != nil:
			logger.Warnf("Submit failed, error: %v", ack.Err)
		case !ack.Ok():
			logger.Warnf("Submit rejected, status: %d", ack.Parts[0].Status)
		default:
			logger.Infof("Submit accepted, message id: %s", ack.Parts[0].MessageId)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		sess.Close()
		<-closed
	case <-closed:
	}
}

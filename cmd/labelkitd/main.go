// labelkitd is a development server of the annotation api.
//
// It keeps everything in memory. Contents can be seeded with a yaml file
// (see memory.Seed); when the file is modified, the server quits to be restarted.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/opst/labelkit/cmd/labelkitd/auth"
	"github.com/opst/labelkit/cmd/labelkitd/memory"
	"github.com/opst/labelkit/cmd/labelkitd/server"
	"github.com/opst/labelkit/pkg/utils/filewatch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	port := flag.Int("port", 8000, "port to listen")
	seedPath := flag.String("seed", "", "yaml file of initial contents")
	secret := flag.String("secret", "", "key to sign auth tokens. random if empty")
	ttl := flag.Duration("token-ttl", 24*time.Hour, "lifetime of auth tokens")
	maxUpload := flag.Int64("max-upload", server.DefaultMaxUpload, "max size of uploaded datapoint in bytes")
	legacy := flag.Bool("legacy", false, "list labels and predictions only at legacy paths")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	repo := memory.New()
	if *seedPath != "" {
		if err := seed(repo, *seedPath); err != nil {
			log.Fatalf("can not read seed: %s", err)
		}
	}

	key := []byte(*secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			log.Fatalf("can not generate token key: %s", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e, err := server.New(repo, server.Config{
		Issuer:    auth.NewIssuer(key, *ttl),
		Registry:  registry,
		MaxUpload: *maxUpload,
		Legacy:    *legacy,
		LogLevel:  *loglevel,
	})
	if err != nil {
		log.Fatalf("can not build server: %s", err)
	}

	if *seedPath != "" {
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), *seedPath)
		if err != nil {
			log.Fatalf("can not watch seed: %s", err)
		}
		defer cancel()
		context.AfterFunc(ctx, func() {
			log.Println("seed file is updated. quit to restart server.")
			graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := e.Shutdown(graceful); err != nil {
				log.Printf("error on shutdown by seed update: %s", err)
			}
		})
	}

	log.Println("registered routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	addr := ":" + strconv.Itoa(*port)
	cert, certkey := *pcert, *pkey
	if cert != "" && certkey != "" {
		err = e.StartTLS(addr, cert, certkey)
	} else {
		err = e.Start(addr)
	}
	e.Logger.Info(err)
}

func seed(repo *memory.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := memory.LoadSeed(f)
	if err != nil {
		return err
	}
	return repo.Apply(s)
}

package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/panyam/s3load"
	"github.com/spf13/afero"
)

var (
	config_file   = flag.String("config_file", "", "Config file (toml, yaml or json) to load site config from")
	src_dir       = flag.String("src", "", "Root folder from which all content is loaded.  Will override the respective value in the config if provided")
	includes_dir  = flag.String("includes", "", "Folder (within src) where includes live.  Will override the respective value in the config if provided")
	workers       = flag.Int("workers", 0, "Number of pages loaded concurrently.  Defaults to the number of CPUs")
	no_file_dates = flag.Bool("no_file_dates", false, "Do not use file times as the date of pages without one")
	serve_addr    = flag.String("serve_addr", "", "The address on which to serve the inspection api (with live reloading enabled)")
	path_prefix   = flag.String("path_prefix", "/", "Http path prefix the inspection api is served under")
)

func main() {
	flag.Parse()
	fs := afero.NewOsFs()

	config := s3load.Config{Src: "."}
	if *config_file != "" {
		var err error
		if config, err = s3load.LoadConfig(fs, *config_file); err != nil {
			log.Fatal("Error loading config: ", err)
		}
	}
	if *src_dir != "" {
		config.Src = *src_dir
	}
	if config.Src == "" {
		config.Src = "."
	}
	if *includes_dir != "" {
		config.Includes = *includes_dir
	}
	if *workers > 0 {
		config.Workers = *workers
	}
	if *no_file_dates {
		fileDates := false
		config.FileDates = &fileDates
	}
	if *serve_addr != "" {
		config.ServeAddr = *serve_addr
	}

	site := config.NewSite(fs).Init()
	pages, err := site.LoadPages()
	for _, page := range pages {
		date, _ := page.Date()
		fmt.Printf("%-40s -> %-40s %s\n", page.Src.Path, page.DestPath(), date.Format("2006-01-02 15:04:05"))
	}
	if err != nil {
		log.Println("Errors loading pages: ", err)
		if config.ServeAddr == "" {
			os.Exit(1)
		}
	}

	if config.ServeAddr != "" {
		if config.Watch || *serve_addr != "" {
			if err := site.StartWatching(); err != nil {
				log.Fatal("Error watching: ", err)
			}
			defer site.StopWatching()
		}

		router := mux.NewRouter()
		router.PathPrefix(*path_prefix).Handler(http.StripPrefix(trimSlash(*path_prefix), site.Router()))

		srv := &http.Server{
			Handler: withLogger(router),
			Addr:    config.ServeAddr,
		}
		log.Printf("Serving Site on %s:", config.ServeAddr)
		log.Fatal(srv.ListenAndServe())
	}
}

func trimSlash(prefix string) string {
	return strings.TrimSuffix(prefix, "/")
}

func withLogger(handler http.Handler) http.Handler {
	// the create a handler
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		// pass the handler to httpsnoop to get http status and latency
		m := httpsnoop.CaptureMetrics(handler, writer, request)
		// printing exracted data
		log.Printf("http[%d]-- %s -- %s\n", m.Code, m.Duration, request.URL.Path)
	})
}

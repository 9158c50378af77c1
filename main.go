package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/CodedInternet/gomd22/onboard"
	"github.com/asdine/storm"
	"github.com/caarlos0/env"
)

type EnvConfig struct {
	JWT_ISSUER string `env:"JWT_ISSUER" envDefault:"DEV"`
	JWT_SECRET string `env:"JWT_SECRET"`
	DEBUG      bool   `env:"DEBUG" envDefault:"0"`
	SRCDIR     string `env:"SRCDIR" envDefault:"."`
	CONFIG     string `env:"MD22_CONFIG" envDefault:"md22.yaml"`
	DBFILE     string `env:"MD22_DB" envDefault:"./tmp/dev.db"`
	PORT       string `env:"PORT" envDefault:"0.0.0.0:8080"`
}

var (
	ENV    *EnvConfig
	DB     *storm.DB
	Device onboard.Device
)

func init() {
	// Load main config
	ENV = new(EnvConfig)
	if err := env.Parse(ENV); err != nil {
		panic(err)
	}
}

func main() {
	simulated := flag.Bool("sim", false, "Run against simulated boards")
	port := flag.String("port", ENV.PORT, "Specify the ip:port to listen on")
	interactive := flag.Bool("shell", true, "Start the interactive shell")
	flag.Parse()

	if err := run(*port, *simulated, *interactive); err != nil {
		log.Fatal(err)
	}
}

// run opens the database and boards and serves the API until the listener
// fails. Everything opened here is closed before it returns.
func run(port string, simulated, interactive bool) error {
	if err := resolveJWTSecret(ENV); err != nil {
		return err
	}

	dbFile, err := filepath.Abs(ENV.DBFILE)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(dbFile); !exists(dir) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("unable to create %s: %v", dir, err)
		}
	}

	DB, err = openDb(dbFile)
	if err != nil {
		return err
	}
	defer DB.Close() // close database when finished

	journal, err := onboard.NewJournal(DB)
	if err != nil {
		return err
	}

	filename := ENV.CONFIG
	if !filepath.IsAbs(filename) {
		filename = filepath.Join(ENV.SRCDIR, filename)
	}
	config, err := onboard.LoadConfig(filename)
	if err != nil {
		return fmt.Errorf("unable to load config %s: %v", filename, err)
	}

	if simulated {
		fmt.Println("Creating simulator")
		config = onboard.Simulated(config)
	}

	controller, err := onboard.NewController(config, journal, nil)
	if err != nil {
		return fmt.Errorf("unable to initialize md22 units: %v", err)
	}
	defer controller.Close()
	Device = controller

	if interactive {
		// Start an instance of the shell so it can be controlled from the CLI
		go newShell(Device).Start()
	}

	if ENV.DEBUG {
		fmt.Println("Running in debug mode. Authentication disabled.")
	}

	fmt.Println("Listening on port", port)
	return http.ListenAndServe(port, Router())
}

// exists reports whether path is a directory. Anything else, including a
// path running through a regular file, has to be created.
func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func openDb(dbFile string) (db *storm.DB, err error) {
	db, err = storm.Open(dbFile)
	if err != nil {
		return
	}

	// call inits for each type
	if err := db.Init(&User{}); err != nil {
		return nil, err
	}

	return
}

// Package pathutil manages application file paths and locations
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// Paths holds all application path configurations.
type Paths struct {
	configDir      string
	configFileName string
	dbFileName     string
	sqliteFileName string
	docsDirName    string
	logFileName    string

	// Computed absolute paths
	configFilePath string
	dbFilePath     string
	sqliteFilePath string
	dataDirPath    string
	docsDirPath    string
	logFilePath    string
}

var (
	paths *Paths
	once  sync.Once
)

// Initialize must be called once at program startup.
func Initialize() error {
	var initErr error

	once.Do(func() {
		paths = &Paths{
			configDir:      "lift",
			configFileName: "config.yml",
			dbFileName:     "lift.db",
			sqliteFileName: "lift.sqlite",
			docsDirName:    "documents",
			logFileName:    "lift.log",
		}

		paths.applyEnvironmentOverrides()
		initErr = paths.computePaths()
	})

	return initErr
}

// Must panics if paths haven't been initialized.
func Must() *Paths {
	if paths == nil {
		panic("pathutil.Initialize() must be called before accessing paths")
	}

	return paths
}

func Dir() string {
	return Must().configDir
}

func ConfigFilePath() string {
	return Must().configFilePath
}

func DBFilePath() string {
	return Must().dbFilePath
}

func SQLiteFilePath() string {
	return Must().sqliteFilePath
}

// DataDir is the directory holding the databases and starter plans.
func DataDir() string {
	return Must().dataDirPath
}

// DocumentsDir is the directory used by the file-per-key store.
func DocumentsDir() string {
	return Must().docsDirPath
}

func LogFilePath() string {
	return Must().logFilePath
}

func (p *Paths) applyEnvironmentOverrides() {
	liftEnv := strings.TrimSpace(os.Getenv("LIFT_ENV"))
	if liftEnv != "" {
		p.configFileName = fmt.Sprintf("config_%s.yml", liftEnv)
		p.dbFileName = fmt.Sprintf("lift_%s.db", liftEnv)
		p.sqliteFileName = fmt.Sprintf("lift_%s.sqlite", liftEnv)
		p.docsDirName = fmt.Sprintf("documents_%s", liftEnv)
		p.logFileName = fmt.Sprintf("lift_%s.log", liftEnv)
	}
}

func (p *Paths) computePaths() error {
	var err error

	relPath := filepath.Join(p.configDir, p.configFileName)

	p.configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		return err
	}

	dataDir, err := xdg.DataFile(p.configDir)
	if err != nil {
		return err
	}

	p.dataDirPath = dataDir

	p.dbFilePath = filepath.Join(dataDir, p.dbFileName)

	p.sqliteFilePath = filepath.Join(dataDir, p.sqliteFileName)

	p.docsDirPath = filepath.Join(dataDir, p.docsDirName)

	p.logFilePath = filepath.Join(dataDir, "log", p.logFileName)

	return nil
}

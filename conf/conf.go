package conf

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"strings"
	"time"
)

const envPrefix = "CRYPTOLIB"

type ChallengeConf struct {
	Domain         string   `mapstructure:"Domain"`
	Statement      string   `mapstructure:"Statement"`
	Uri            string   `mapstructure:"Uri"`
	Resources      []string `mapstructure:"Resources"`
	ExpirationTime string   `mapstructure:"ExpirationTime"`
	NotBefore      string   `mapstructure:"NotBefore"`
	Timeout        int      `mapstructure:"Timeout"`
}

type AuthConf struct {
	ApiKey      string        `mapstructure:"ApiKey"`
	BaseUrl     string        `mapstructure:"BaseUrl"`
	ListenAddr  string        `mapstructure:"ListenAddr"`
	RoutePrefix string        `mapstructure:"RoutePrefix"`
	Challenge   ChallengeConf `mapstructure:"Challenge"`
}

// Conf is built once at process start and shared by pointer with the relay
// and the console.
type Conf struct {
	Node            string        `mapstructure:"Node"`
	ContractAddress string        `mapstructure:"ContractAddress"`
	AbiFile         string        `mapstructure:"AbiFile"`
	WalletAddress   string        `mapstructure:"WalletAddress"`
	PrivateKey      string        `mapstructure:"PrivateKey"`
	ChainId         int64         `mapstructure:"ChainId"`
	GasLimit        uint64        `mapstructure:"GasLimit"`
	GasPriceGwei    int64         `mapstructure:"GasPriceGwei"`
	CallTimeout     time.Duration `mapstructure:"CallTimeout"`
	SubmitJoin      bool          `mapstructure:"SubmitJoin"`
	LogLevel        string        `mapstructure:"LogLevel"`
	Auth            AuthConf      `mapstructure:"Auth"`
}

// Every key needs a default, otherwise viper ignores its environment override.
func setDefaults(v *viper.Viper) {
	v.SetDefault("Node", "http://127.0.0.1:8545")
	v.SetDefault("ContractAddress", "0x5fbdb2315678afecb367f032d93f642f64180aa3")
	v.SetDefault("AbiFile", "contracts/CryptoLibraryABI.json")
	v.SetDefault("WalletAddress", "")
	v.SetDefault("PrivateKey", "")
	v.SetDefault("ChainId", 1)
	v.SetDefault("GasLimit", 2000000)
	v.SetDefault("GasPriceGwei", 20)
	v.SetDefault("CallTimeout", "30s")
	v.SetDefault("SubmitJoin", false)
	v.SetDefault("LogLevel", "info")

	v.SetDefault("Auth.ApiKey", "")
	v.SetDefault("Auth.BaseUrl", "https://authapi.moralis.io")
	v.SetDefault("Auth.ListenAddr", "127.0.0.1:3000")
	v.SetDefault("Auth.RoutePrefix", "")
	v.SetDefault("Auth.Challenge.Domain", "localhost")
	v.SetDefault("Auth.Challenge.Statement", "Please confirm login")
	v.SetDefault("Auth.Challenge.Uri", "https://localhost:3000/")
	v.SetDefault("Auth.Challenge.Resources", []string{"https://docs.moralis.io/"})
	v.SetDefault("Auth.Challenge.ExpirationTime", "2023-01-01T00:00:000Z")
	v.SetDefault("Auth.Challenge.NotBefore", "2024-01-01T00:00:000Z")
	v.SetDefault("Auth.Challenge.Timeout", 30)
}

// LoadConf reads the JSON file at path over the built-in defaults, then
// applies CRYPTOLIB_* environment overrides (CRYPTOLIB_AUTH_APIKEY for
// Auth.ApiKey). An empty path skips the file.
func LoadConf(file string) (*Conf, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			log.WithFields(log.Fields{
				"path":  file,
				"error": err,
			}).Error("read config file failed")
			return nil, err
		}
	}

	var conf Conf
	if err := v.Unmarshal(&conf); err != nil {
		log.WithFields(log.Fields{
			"path":  file,
			"error": err,
		}).Error("parser config file failed")
		return nil, err
	}

	return &conf, nil
}

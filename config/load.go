package config

import (
	"github.com/spf13/viper"
	"go-ml.dev/pkg/synthtrain/model"
	"golang.org/x/xerrors"
)

// Load reads configuration file over defaults, format is chosen by file extension
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, model.Failure(model.ErrIOFailure, err, "read config %v", path)
	}
	c := Default()
	if v.IsSet("num_type_list") {
		c.ClassNames = nil
	}
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, xerrors.Errorf("decode config %v: %v: %w", path, err.Error(), model.ErrInvalidConfiguration)
	}
	return c, nil
}

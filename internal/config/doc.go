// Package config loads goal form settings with viper.
package config

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// The config file is optional: robstride.json in the working directory or in
// ~/.config. It can pin the interface list and scan range so bench setups
// don't need flags on every invocation.
func loadConfig() {
	viper.SetDefault("interfaces", "can0,can1,can2,can3,can4")
	viper.SetDefault("scan.startId", 10)
	viper.SetDefault("scan.endId", 50)
	viper.SetDefault("slcan.baudRate", 1_000_000)

	viper.SetConfigName("robstride")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config"))
	}

	// Missing config file is fine; the defaults above apply.
	viper.ReadInConfig()
}

func configInterfaces() string {
	return viper.GetString("interfaces")
}

func configScanRange() (start, end int) {
	return viper.GetInt("scan.startId"), viper.GetInt("scan.endId")
}

func configSLCANBaud() int {
	return viper.GetInt("slcan.baudRate")
}

package config

import (
	"encoding/json"
	"os"

	"grid-trading-engine/internal/models"
)

// LoadConfig 从指定路径加载JSON配置文件并解析到Config结构体中
func LoadConfig(path string) (*models.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	config := &models.Config{}
	err = decoder.Decode(config)
	if err != nil {
		return nil, err
	}

	if config.DBPath == "" {
		config.DBPath = "data/gridengine"
	}

	return config, nil
}

// LoadGridConfig 从指定路径加载JSON格式的网格配置
func LoadGridConfig(path string) (*models.GridConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gridConfig := &models.GridConfig{}
	if err := json.NewDecoder(file).Decode(gridConfig); err != nil {
		return nil, err
	}
	return gridConfig, nil
}

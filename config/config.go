package config

import "time"

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type NotifierType string

const NOTIFIER_TYPE_LOG NotifierType = "log"
const NOTIFIER_TYPE_REDIS NotifierType = "redis"

type Config struct {
	HttpPort         int
	DefinitionFile   string
	StorageType      StorageType
	NotifierType     NotifierType
	RedisConfig      RedisConfig
	Retention        time.Duration
	NotifierCapacity int
	DecisionLogFile  string
	TimerTick        time.Duration
	TimerWheelSize   int64
}

type RedisConfig struct {
	Addrs     []string
	Namespace string
}

package main

type config struct {
	API              apiConfig              `yaml:"api"`
	ServiceDiscovery serviceDiscoveryConfig `yaml:"serviceDiscovery"`
	Jaeger           jaegerConfig           `yaml:"jaeger"`
	MySQL            mysqlConfig            `yaml:"mysql"`
	Kafka            kafkaConfig            `yaml:"kafka"`
	Catalog          catalogConfig          `yaml:"catalog"`
}

type apiConfig struct {
	Port int `yaml:"port"`
}

type serviceDiscoveryConfig struct {
	Consul consulConfig `yaml:"consul"`
}

type consulConfig struct {
	Address string `yaml:"address"`
}

type jaegerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// mysqlConfig selects the storage backend. An empty DSN runs the service on
// the in-memory repository.
type mysqlConfig struct {
	DSN string `yaml:"dsn"`
}

// kafkaConfig enables rating event ingestion. An empty address disables the
// consumer.
type kafkaConfig struct {
	Address string `yaml:"address"`
	GroupID string `yaml:"groupId"`
	Topic   string `yaml:"topic"`
}

type catalogConfig struct {
	DefaultLocale string `yaml:"defaultLocale"`
}

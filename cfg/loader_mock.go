package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (yl *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "github-harvester",
			Version: "0.0.1",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "github_harvester",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:       "",
			Username:          "",
			ApiUrl:            "https://api.github.com",
			PerPage:           100,
			MaxRetries:        5,
			BaseDelayMs:       2000,
			MaxDelayMs:        60000,
			RequestsPerSecond: 10,
			BurstSize:         10,
			MaxWaitMin:        10,
			TimeoutSec:        30,
		},

		// Harvester
		Harvester: Harvester{
			PageWorkers:    10,
			DetailWorkers:  10,
			ProgressBuffer: 64,
		},

		// Export
		Export: Export{
			Dir:         ".",
			KeepPartial: false,
		},

		// Kafka (tắt mặc định, bật khi chạy kèm consumer)
		Kafka: Kafka{
			Enabled: false,
			Brokers: []string{"127.0.0.1:9092"},
			Producer: KafkaProducer{
				TopicFollower:    "harvester.followers",
				TopicContributor: "harvester.contributors",
			},
			Consumer: KafkaConsumer{
				GroupID: "harvester-consumer",
			},
		},
	}, nil
}

package cfg

type (
	App struct {
		Name    string
		Version string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	GithubApi struct {
		AccessToken       string
		Username          string
		ApiUrl            string
		PerPage           int
		MaxRetries        int
		BaseDelayMs       int
		MaxDelayMs        int
		RequestsPerSecond int
		BurstSize         int
		MaxWaitMin        int
		TimeoutSec        int
	}

	Harvester struct {
		PageWorkers    int
		DetailWorkers  int
		ProgressBuffer int
	}

	Export struct {
		Dir         string
		KeepPartial bool
	}

	KafkaProducer struct {
		TopicFollower    string
		TopicContributor string
	}

	KafkaConsumer struct {
		GroupID string
	}

	Kafka struct {
		Enabled  bool
		Brokers  []string
		Producer KafkaProducer
		Consumer KafkaConsumer
	}
)

type Config struct {
	App       App
	Mysql     Mysql
	GithubApi GithubApi
	Harvester Harvester
	Export    Export
	Kafka     Kafka
}

package conf

// Bootstrap is the process configuration scanned from configs/config.yaml.
type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Auth   *Auth   `json:"auth"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Network string `json:"network"`
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"` // time.ParseDuration format
}

type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
	Rabbitmq *Rabbitmq `json:"rabbitmq"`
}

type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

type Redis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type Rabbitmq struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Vhost    string `json:"vhost"`
}

type Auth struct {
	JwtSecret string `json:"jwt_secret"`
}

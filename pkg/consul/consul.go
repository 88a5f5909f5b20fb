package consul

import (
	"fmt"
	"os"
	"strconv"

	"location-service/config"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type ConsulConn struct {
	logger    *zap.SugaredLogger
	cfg       *config.Config
	client    *consulapi.Client
	serviceID string
}

func NewConsulConn(logger *zap.SugaredLogger, cfg *config.Config) *ConsulConn {
	return &ConsulConn{
		logger: logger,
		cfg:    cfg,
	}
}

// Connect creates the consul client and registers this service. Registration
// is skipped when CONSUL_ADDR is unset so local runs do not need an agent.
func (c *ConsulConn) Connect() *consulapi.Client {
	if c.cfg.ConsulAddr == "" {
		c.logger.Info("Consul disabled, skipping registration")
		return nil
	}

	consulCfg := consulapi.DefaultConfig()
	consulCfg.Address = c.cfg.ConsulAddr

	client, err := consulapi.NewClient(consulCfg)
	if err != nil {
		c.logger.Fatalf("Failed to create consul client: %v", err)
	}
	c.client = client

	hostname, _ := os.Hostname()
	port, err := strconv.Atoi(c.cfg.Port)
	if err != nil {
		c.logger.Fatalf("Invalid port %q: %v", c.cfg.Port, err)
	}

	c.serviceID = fmt.Sprintf("%s-%s-%s", c.cfg.ServiceName, hostname, c.cfg.Port)
	registration := &consulapi.AgentServiceRegistration{
		ID:   c.serviceID,
		Name: c.cfg.ServiceName,
		Port: port,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%s/health", hostname, c.cfg.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		c.logger.Fatalf("Failed to register service with consul: %v", err)
	}

	c.logger.Infof("Registered %s with consul as %s", c.cfg.ServiceName, c.serviceID)
	return client
}

func (c *ConsulConn) Deregister() {
	if c.client == nil {
		return
	}
	if err := c.client.Agent().ServiceDeregister(c.serviceID); err != nil {
		c.logger.Errorf("Failed to deregister %s: %v", c.serviceID, err)
		return
	}
	c.logger.Infof("Deregistered %s from consul", c.serviceID)
}

package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr string
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "0.0.0.0:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("PULLHOOK_ADDR"),
		},
	}
}

// ApplyFile fills values not given by flag or environment from the config file
func (c *Server) ApplyFile(cmd *cli.Command, f *File) {
	if !cmd.IsSet("addr") && f.Addr != "" {
		c.Addr = f.Addr
	}
}

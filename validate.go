package tlshake

func validateConfig(config *Config, isClient bool) error {
	switch {
	case config == nil:
		return errConfigMissing
	case len(config.Certificates) > 0 && config.PrivateKey == nil:
		return errPrivateKeyMissing
	case !isClient && config.PSK == nil && len(config.Certificates) == 0:
		return errNoCredentials
	}

	return nil
}

package onboard

// SIM_REVISION is the firmware revision reported by simulated boards.
const SIM_REVISION = 9

// Simulated returns a copy of config with every bus replaced by an in memory
// simulation, keeping unit names and addresses intact.
func Simulated(config Config) Config {
	sim := config
	sim.Buses = make(map[string]BusConfig, len(config.Buses))
	for name, b := range config.Buses {
		sim.Buses[name] = BusConfig{Kind: BUS_SIM, Device: b.Device}
	}

	return sim
}

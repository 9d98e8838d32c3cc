package pac_modbus

// PAC input register map (protocol addresses, function code 4).
const (
	REG_PHASES_START    uint16 = 1
	REG_PHASES_COUNT    uint16 = 30
	REG_FREQUENCY_START uint16 = 55
	REG_FREQUENCY_COUNT uint16 = 2
	REG_POWER_START     uint16 = 63
	REG_POWER_COUNT     uint16 = 4
	REG_ENERGY_START    uint16 = 801
	REG_ENERGY_COUNT    uint16 = 40

	// each energy counter is a double (4 registers); counters of both
	// tariffs are interleaved so a tariff's counters are 8 registers apart
	REG_ENERGY_TARIFF_1_START uint16 = 801
	REG_ENERGY_TARIFF_2_START uint16 = 805
	REG_ENERGY_COUNTER_STRIDE uint16 = 8
	ENERGY_COUNTERS_PER_TARIFF       = 5
)

// offsets of the 15 floats of the phase block
const (
	phaseVoltageL1N = iota
	phaseVoltageL2N
	phaseVoltageL3N
	phaseVoltageL1L2
	phaseVoltageL2L3
	phaseVoltageL3L1
	phaseCurrentL1
	phaseCurrentL2
	phaseCurrentL3
	phaseApparentL1
	phaseApparentL2
	phaseApparentL3
	phaseActiveL1
	phaseActiveL2
	phaseActiveL3
)

// offsets of the 10 doubles of the energy block
const (
	energyActiveImportT1 = iota
	energyActiveImportT2
	energyActiveExportT1
	energyActiveExportT2
	energyReactiveImportT1
	energyReactiveImportT2
	energyReactiveExportT1
	energyReactiveExportT2
	energyApparentT1
	energyApparentT2
)

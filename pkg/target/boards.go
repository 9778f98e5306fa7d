package target

import (
	"fmt"
	"time"
)

// Stock boards. Entries with an empty DefaultToolchain fall back to ARM.

var (
	tcARM       = []Toolchain{ToolchainARM, ToolchainGCCARM}
	tcARMMicro  = []Toolchain{ToolchainARM, ToolchainUARM}
	tcARMAll    = []Toolchain{ToolchainARM, ToolchainUARM, ToolchainGCCARM}
	tcARMCR     = []Toolchain{ToolchainARM, ToolchainUARM, ToolchainGCCARM, ToolchainGCCCR}
	tcLPC176X   = []Toolchain{ToolchainARM, ToolchainUARM, ToolchainGCCARM, ToolchainGCCCS, ToolchainGCCCR, ToolchainIAR}
	tcGCCOnly   = []Toolchain{ToolchainGCCARM}
	tcMicroOnly = []Toolchain{ToolchainUARM}
)

// nrf51ProgramCycle is the settle time of the nRF51822 interface firmware.
const nrf51ProgramCycle = 6 * time.Second

var stockBoards = []Config{
	{Name: "LPC2368", Core: CoreARM7, ExtraLabels: []string{"NXP", "LPC23XX"},
		SupportedToolchains: []Toolchain{ToolchainARM, ToolchainGCCARM, ToolchainGCCCR}},
	{Name: "LPC1768", Core: CoreCortexM3, ExtraLabels: []string{"NXP", "LPC176X", "MBED_LPC1768"},
		SupportedToolchains: tcLPC176X},
	{Name: "LPC11U24", Core: CoreCortexM0, ExtraLabels: []string{"NXP", "LPC11UXX", "LPC11U24_401"},
		SupportedToolchains: tcARMAll, DefaultToolchain: ToolchainUARM},
	{Name: "LPC11U24_301", Core: CoreCortexM0, ExtraLabels: []string{"NXP", "LPC11UXX"},
		SupportedToolchains: tcARMAll},
	{Name: "KL05Z", Core: CoreCortexM0P, ExtraLabels: []string{"Freescale", "KLXX"},
		SupportedToolchains: tcARMAll, DefaultToolchain: ToolchainUARM, IsDiskVirtual: true},
	{Name: "KL25Z", Core: CoreCortexM0P, ExtraLabels: []string{"Freescale", "KLXX"},
		SupportedToolchains: []Toolchain{ToolchainARM, ToolchainGCCCWEWL, ToolchainGCCCWNewlib, ToolchainGCCARM},
		IsDiskVirtual:       true},
	{Name: "KL46Z", Core: CoreCortexM0P, ExtraLabels: []string{"Freescale", "KLXX"},
		SupportedToolchains: []Toolchain{ToolchainGCCARM, ToolchainARM}, IsDiskVirtual: true},
	{Name: "K20D50M", Core: CoreCortexM4, ExtraLabels: []string{"Freescale"},
		SupportedToolchains: []Toolchain{ToolchainGCCARM, ToolchainARM}, IsDiskVirtual: true},
	{Name: "K64F", Core: CoreCortexM4F, ExtraLabels: []string{"Freescale", "KPSDK_MCUS", "KPSDK_CODE", "FRDM"},
		Macros:              []string{"CPU_MK64FN1M0VMD12", "FSL_RTOS_MBED"},
		SupportedToolchains: tcARM, IsDiskVirtual: true},
	{Name: "LPC812", Core: CoreCortexM0P, ExtraLabels: []string{"NXP", "LPC81X"},
		SupportedToolchains: tcMicroOnly, IsDiskVirtual: true},
	{Name: "LPC810", Core: CoreCortexM0P, ExtraLabels: []string{"NXP", "LPC81X"},
		SupportedToolchains: tcMicroOnly, IsDiskVirtual: true},
	{Name: "LPC4088", Core: CoreCortexM4F, ExtraLabels: []string{"NXP", "LPC408X"},
		SupportedToolchains: []Toolchain{ToolchainARM, ToolchainGCCCR, ToolchainGCCARM},
		IsDiskVirtual:       true, PostLink: PatchRegions},
	{Name: "LPC4330_M4", Core: CoreCortexM4F, ExtraLabels: []string{"NXP", "LPC43XX"},
		SupportedToolchains: []Toolchain{ToolchainARM, ToolchainGCCCR, ToolchainIAR, ToolchainGCCARM}},
	{Name: "LPC4330_M0", Core: CoreCortexM0, ExtraLabels: []string{"NXP", "LPC43XX"},
		SupportedToolchains: []Toolchain{ToolchainARM, ToolchainGCCCR, ToolchainIAR}},
	{Name: "LPC1800", Core: CoreCortexM3, ExtraLabels: []string{"NXP", "LPC43XX"},
		SupportedToolchains: []Toolchain{ToolchainARM, ToolchainGCCCR, ToolchainIAR}},
	{Name: "STM32F3XX", Core: CoreCortexM4, ExtraLabels: []string{"STM", "STM32F3XX"},
		SupportedToolchains: tcARMAll, DefaultToolchain: ToolchainUARM},
	{Name: "STM32F407", Core: CoreCortexM4F, ExtraLabels: []string{"STM", "STM32F4XX"},
		SupportedToolchains: tcARM},
	{Name: "NUCLEO_F030R8", Core: CoreCortexM0, ExtraLabels: []string{"STM", "STM32F0", "STM32F030R8"},
		SupportedToolchains: tcARMMicro, DefaultToolchain: ToolchainUARM},
	{Name: "NUCLEO_F072RB", Core: CoreCortexM0, ExtraLabels: []string{"STM", "STM32F0", "STM32F072RB"},
		SupportedToolchains: tcARMMicro, DefaultToolchain: ToolchainUARM},
	{Name: "NUCLEO_F103RB", Core: CoreCortexM3, ExtraLabels: []string{"STM", "STM32F1", "STM32F103RB"},
		SupportedToolchains: tcARMAll, DefaultToolchain: ToolchainUARM},
	{Name: "NUCLEO_F302R8", Core: CoreCortexM4F, ExtraLabels: []string{"STM", "STM32F3", "STM32F302R8"},
		SupportedToolchains: tcARMMicro, DefaultToolchain: ToolchainUARM},
	{Name: "NUCLEO_F334R8", Core: CoreCortexM4F, ExtraLabels: []string{"STM", "STM32F3", "STM32F334R8"},
		SupportedToolchains: tcARMMicro, DefaultToolchain: ToolchainUARM},
	{Name: "NUCLEO_F401RE", Core: CoreCortexM4F, ExtraLabels: []string{"STM", "STM32F4", "STM32F401RE"},
		SupportedToolchains: tcARMAll, DefaultToolchain: ToolchainUARM},
	{Name: "NUCLEO_F411RE", Core: CoreCortexM4, ExtraLabels: []string{"STM", "STM32F4", "STM32F411RE"},
		SupportedToolchains: tcARMMicro, DefaultToolchain: ToolchainUARM},
	{Name: "NUCLEO_L053R8", Core: CoreCortexM0P, ExtraLabels: []string{"STM", "STM32L0", "STM32L053R8"},
		SupportedToolchains: tcARMMicro, DefaultToolchain: ToolchainUARM},
	{Name: "NUCLEO_L152RE", Core: CoreCortexM3, ExtraLabels: []string{"STM", "STM32L1", "STM32L152RE"},
		SupportedToolchains: tcARMMicro, DefaultToolchain: ToolchainUARM},
	{Name: "LPC1347", Core: CoreCortexM3, ExtraLabels: []string{"NXP", "LPC13XX"},
		SupportedToolchains: tcARM},
	{Name: "LPC1114", Core: CoreCortexM0, ExtraLabels: []string{"NXP", "LPC11XX_11CXX", "LPC11XX"},
		SupportedToolchains: tcARMCR, DefaultToolchain: ToolchainUARM},
	{Name: "LPC11C24", Core: CoreCortexM0, ExtraLabels: []string{"NXP", "LPC11XX_11CXX", "LPC11CXX"},
		SupportedToolchains: tcARMAll},
	{Name: "LPC11U35_401", Core: CoreCortexM0, ExtraLabels: []string{"NXP", "LPC11UXX"},
		SupportedToolchains: tcARMCR, DefaultToolchain: ToolchainUARM},
	{Name: "LPC11U35_501", Core: CoreCortexM0, ExtraLabels: []string{"NXP", "LPC11UXX"},
		SupportedToolchains: tcARMCR, DefaultToolchain: ToolchainUARM},
	{Name: "LPC11U37_501", Core: CoreCortexM0, ExtraLabels: []string{"NXP", "LPC11UXX"},
		SupportedToolchains: tcARMCR, DefaultToolchain: ToolchainUARM},
	{Name: "NRF51822", Core: CoreCortexM0, ExtraLabels: []string{"NORDIC", "NRF51822_MKIT"},
		SupportedToolchains: tcARM, IsDiskVirtual: true,
		PostLink: PatchSoftDevice, ProgramCycle: nrf51ProgramCycle},
	{Name: "UBLOX_C027", Core: CoreCortexM3, ExtraLabels: []string{"NXP", "LPC176X"},
		SupportedToolchains: tcLPC176X, Macros: []string{"TARGET_LPC1768"}},
	{Name: "LPC1549", Core: CoreCortexM3, ExtraLabels: []string{"NXP", "LPC15XX"},
		SupportedToolchains: []Toolchain{ToolchainUARM, ToolchainGCCCR}, DefaultToolchain: ToolchainUARM},
	{Name: "LPC11U68", Core: CoreCortexM0P, ExtraLabels: []string{"NXP", "LPC11U6X"},
		SupportedToolchains: []Toolchain{ToolchainUARM, ToolchainGCCCR, ToolchainGCCARM}, DefaultToolchain: ToolchainUARM},
	// The DISCO boards only build with GCC_ARM, so that is also their default.
	{Name: "DISCO_F051R8", Core: CoreCortexM0, ExtraLabels: []string{"STM", "STM32F0", "STM32F051", "STM32F051R8"},
		SupportedToolchains: tcGCCOnly},
	{Name: "DISCO_F100RB", Core: CoreCortexM3, ExtraLabels: []string{"STM", "STM32F1", "STM32F100RB"},
		SupportedToolchains: tcGCCOnly},
	{Name: "DISCO_F303VC", Core: CoreCortexM4F, ExtraLabels: []string{"STM", "STM32F3", "STM32F303", "STM32F303VC"},
		SupportedToolchains: tcGCCOnly},
	{Name: "DISCO_F407VG", Core: CoreCortexM4F, ExtraLabels: []string{"STM", "STM32F4", "STM32F407", "STM32F407VG"},
		SupportedToolchains: tcGCCOnly},
	{Name: "ARCH_PRO", Core: CoreCortexM3, ExtraLabels: []string{"NXP", "LPC176X"},
		SupportedToolchains: tcLPC176X, Macros: []string{"TARGET_LPC1768"}},
	{Name: "ARM_MPS2", Core: CoreCortexM4F, Macros: []string{"CMSDK_CM4"},
		SupportedToolchains: tcARM},
	{Name: "MTS_GAMBIT", Core: CoreCortexM4F, ExtraLabels: []string{"Freescale", "KPSDK_MCUS", "KPSDK_CODE", "K64F"},
		Macros:              []string{"TARGET_K64F", "CPU_MK64FN1M0VMD12", "FSL_RTOS_MBED"},
		SupportedToolchains: tcARM, IsDiskVirtual: true},
}

type derivedBoard struct {
	base string
	name string
	o    Overrides
}

var (
	nordicLabels = []string{"NORDIC", "NRF51822"}
	nordicMacros = []string{"TARGET_NRF51822"}
	m0           = CoreCortexM0
	uarm         = ToolchainUARM
)

// derivedBoards are boards sharing silicon with a stock board. They inherit
// everything not overridden, including the post-link transform.
var derivedBoards = []derivedBoard{
	{"LPC11U35_501", "XADOW_M0", Overrides{
		ExtraLabels: []string{"NXP", "LPC11UXX", "LPC11U35_501"},
		Macros:      []string{"TARGET_LPC11U35_501"},
	}},
	{"NRF51822", "ARCH_BLE", Overrides{ExtraLabels: nordicLabels, Macros: nordicMacros}},
	{"LPC11U37_501", "ARCH_GPRS", Overrides{}},
	{"LPC11U37_501", "LPCCAPPUCCINO", Overrides{}},
	{"NRF51822", "HRM1017", Overrides{ExtraLabels: nordicLabels, Macros: nordicMacros}},
	{"NRF51822", "RBLAB_NRF51822", Overrides{ExtraLabels: nordicLabels, Macros: nordicMacros}},
	{"LPC11U24", "GHI_MBUINO", Overrides{
		Core:                &m0,
		ExtraLabels:         []string{"NXP", "LPC11UXX"},
		Macros:              []string{"TARGET_LPC11U24"},
		SupportedToolchains: tcARMAll,
		DefaultToolchain:    &uarm,
	}},
}

// Builtin returns a freshly built catalog of the stock boards.
func Builtin() (*Catalog, error) {
	c := NewCatalog()
	for _, cfg := range stockBoards {
		d, err := New(cfg)
		if err != nil {
			return nil, fmt.Errorf("stock board %s: %w", cfg.Name, err)
		}
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	for _, b := range derivedBoards {
		if _, err := c.DeriveAndRegister(b.base, b.name, b.o); err != nil {
			return nil, fmt.Errorf("derived board %s: %w", b.name, err)
		}
	}
	return c, nil
}

// MustBuiltin is Builtin for package-level initialisation in commands and tests.
func MustBuiltin() *Catalog {
	c, err := Builtin()
	if err != nil {
		panic(err)
	}
	return c
}

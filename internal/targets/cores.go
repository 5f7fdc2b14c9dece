package targets

// coreLabels are the labels implied by a CPU core.
var coreLabels = map[string][]string{
	"Cortex-M0":   {"M0", "CORTEX_M", "LIKE_CORTEX_M0", "CORTEX"},
	"Cortex-M0+":  {"M0P", "CORTEX_M", "LIKE_CORTEX_M0", "CORTEX"},
	"Cortex-M1":   {"M1", "CORTEX_M", "LIKE_CORTEX_M1", "CORTEX"},
	"Cortex-M3":   {"M3", "CORTEX_M", "LIKE_CORTEX_M3", "CORTEX"},
	"Cortex-M4":   {"M4", "CORTEX_M", "RTOS_M4_M7", "LIKE_CORTEX_M4", "CORTEX"},
	"Cortex-M4F":  {"M4", "CORTEX_M", "RTOS_M4_M7", "LIKE_CORTEX_M4", "CORTEX"},
	"Cortex-M7":   {"M7", "CORTEX_M", "RTOS_M4_M7", "LIKE_CORTEX_M7", "CORTEX"},
	"Cortex-M7F":  {"M7", "CORTEX_M", "RTOS_M4_M7", "LIKE_CORTEX_M7", "CORTEX"},
	"Cortex-M7FD": {"M7", "CORTEX_M", "RTOS_M4_M7", "LIKE_CORTEX_M7", "CORTEX"},
	"Cortex-M23":  {"M23", "CORTEX_M", "LIKE_CORTEX_M23", "CORTEX"},
	"Cortex-M33":  {"M33", "CORTEX_M", "LIKE_CORTEX_M33", "CORTEX"},
	"Cortex-M33F": {"M33", "CORTEX_M", "LIKE_CORTEX_M33", "CORTEX"},
	"Cortex-A9":   {"A9", "CORTEX_A", "LIKE_CORTEX_A9", "CORTEX"},
}

// coreMacros are the preprocessor symbols implied by a CPU core.
var coreMacros = map[string][]string{
	"Cortex-M0":   {"__CORTEX_M0", "ARM_MATH_CM0", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-M0+":  {"__CORTEX_M0PLUS", "ARM_MATH_CM0PLUS", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-M1":   {"__CORTEX_M3", "ARM_MATH_CM1", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-M3":   {"__CORTEX_M3", "ARM_MATH_CM3", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-M4":   {"__CORTEX_M4", "ARM_MATH_CM4", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-M4F":  {"__CORTEX_M4", "ARM_MATH_CM4", "__FPU_PRESENT=1", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-M7":   {"__CORTEX_M7", "ARM_MATH_CM7", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-M7F":  {"__CORTEX_M7", "ARM_MATH_CM7", "__FPU_PRESENT=1", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-M7FD": {"__CORTEX_M7", "ARM_MATH_CM7", "__FPU_PRESENT=1", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-M23":  {"__CORTEX_M23", "ARM_MATH_ARMV8MBL", "DOMAIN_NS=1", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-M33":  {"__CORTEX_M33", "ARM_MATH_ARMV8MML", "DOMAIN_NS=1", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-M33F": {"__CORTEX_M33", "ARM_MATH_ARMV8MML", "DOMAIN_NS=1", "__FPU_PRESENT=1", "__CMSIS_RTOS", "__MBED_CMSIS_RTOS_CM"},
	"Cortex-A9":   {"__CORTEX_A9", "ARM_MATH_CA9", "__FPU_PRESENT", "__CMSIS_RTOS", "__EVAL", "__MBED_CMSIS_RTOS_CA9"},
}

// CoreLabels returns the labels of core, or nil for an unknown core.
func CoreLabels(core string) []string { return coreLabels[core] }

// CoreMacros returns the macros of core, or nil for an unknown core.
func CoreMacros(core string) []string { return coreMacros[core] }

package testutil

import (
	"path/filepath"
	"testing"
)

// FrameworkTargets is the metadata of the fixture framework.
const FrameworkTargets = `
target "Target" {
  core                 = ""
  supported_toolchains = ["GCC_ARM"]
}

target "MCU_K64F" {
  public       = false
  inherits     = ["Target"]
  core         = "Cortex-M4F"
  extra_labels = ["Freescale", "KSDK2_MCUS"]
  macros       = ["CPU_MK64FN1M0VMD12", "FSL_RTOS_MBED"]
  device_has   = ["SERIAL", "I2C"]
}

target "K64F" {
  inherits       = ["MCU_K64F"]
  macros_add     = ["CMSIS_VECTAB_VIRTUAL_HEADER_FILE=\"cmsis_nvic.h\""]
  device_has_add = ["TRNG"]

  region "application" {
    offset = 0
    length = 96
    active = true
  }
  region "bootloader" {
    offset = 96
    length = 64
    file   = "targets/TARGET_Freescale/TARGET_K64F/boot.bin"
  }
}

target "MCU_NRF51" {
  public       = false
  inherits     = ["Target"]
  core         = "Cortex-M0"
  extra_labels = ["NORDIC"]

  aux_binary {
    name = "softdevice.hex"
  }
}

target "NRF51_DK" {
  inherits          = ["MCU_NRF51"]
  post_binary_hook  = "lpc_checksum"
  output_ext_update = "hex"
}

target "BROKEN" {
  inherits         = ["Target"]
  post_binary_hook = "does_not_exist"
}
`

// FrameworkProfile is the develop profile of the fixture framework.
const FrameworkProfile = `
toolchain "GCC_ARM" {
  common = ["-c", "-Wall", "-Os", "-ffunction-sections", "-DMBED_DEBUG"]
  asm    = ["-x", "assembler-with-cpp"]
  c      = ["-std=gnu11"]
  cxx    = ["-std=gnu++14", "-fno-rtti"]
  ld     = ["-Wl,--gc-sections", "-Wl,-n"]
}
`

// Framework writes a small framework tree below a fresh temp dir and
// returns its root, named framework-mbed like the installed package.
func Framework(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "framework-mbed")
	return WriteTree(t, root, map[string]string{
		"targets/targets.hcl":                            FrameworkTargets,
		"tools/profiles/develop.hcl":                     FrameworkProfile,
		"tools/profiles/release.json":                    `{"toolchain": {"GCC_ARM": {"common": ["-O2"]}}}`,
		"platform/mbed_wait_api.c":                       "",
		"platform/mbed_wait_api.h":                       "",
		"platform/TESTS/test.c":                          "",
		"drivers/Serial.cpp":                             "",
		"drivers/Serial.h":                               "",
		"cmsis/cmsis.h":                                  "",
		"docs/README.md":                                 "",
		"empty/":                                         "",
		"targets/TARGET_Freescale/TARGET_K64F/k64f.c":    "",
		"targets/TARGET_Freescale/TARGET_K64F/boot.bin":  "boot",
		"targets/TARGET_Freescale/TARGET_K64F/libk64f.a": "",
		"targets/TARGET_Freescale/TARGET_K64F/TOOLCHAIN_GCC_ARM/MK64FN1M0xxx12.ld": "",
		"targets/TARGET_Freescale/TARGET_K64F/TOOLCHAIN_GCC_ARM/startup_MK64F12.S": "",
		"targets/TARGET_Freescale/TARGET_K64F/TOOLCHAIN_ARM/startup.S":             "",
		"targets/TARGET_NORDIC/TARGET_MCU_NRF51/nrf51.c":                           "",
		"targets/TARGET_NORDIC/TARGET_MCU_NRF51/softdevice.hex":                    ":00000001FF\n",
		"targets/TARGET_NORDIC/TARGET_MCU_NRF51/TOOLCHAIN_GCC_ARM/NRF51822.ld":     "",
		"features/.hidden/x.c":         "",
		"features/FEATURE_BLE/ble.cpp": "",
		"features/FEATURE_BLE/ble.o":   "",
	})
}

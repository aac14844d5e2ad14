// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"encoding/binary"
	"errors"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

// ErrNotSPIRV is returned for binaries that can't be a SPIR-V module.
var ErrNotSPIRV = errors.New("not a SPIR-V module")

// SliceUint32 converts little endian SPIR-V bytes into the words
// vulkan expects for shader module creation. Trailing bytes that
// don't make a full word are dropped.
func SliceUint32(data []byte) []uint32 {
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words
}

// SPIRVWords validates and converts a SPIR-V binary.
func SPIRVWords(data []byte) ([]uint32, error) {
	if len(data) < 20 || len(data)%4 != 0 {
		return nil, ErrNotSPIRV
	}
	words := SliceUint32(data)
	if words[0] != SPIRVMagic {
		return nil, ErrNotSPIRV
	}
	return words, nil
}

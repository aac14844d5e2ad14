// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"

	vk "github.com/devblok/vulkan"
)

// ResultError is a failed Vulkan call.
type ResultError struct {
	Op     string
	Result vk.Result
}

func (e *ResultError) Error() string {
	if err := vk.Error(e.Result); err != nil {
		return e.Op + "(): " + err.Error()
	}
	return fmt.Sprintf("%s(): unexpected result %d", e.Op, e.Result)
}

// check turns a result into an error, nil for success.
func check(op string, ret vk.Result) error {
	if vk.Error(ret) == nil {
		return nil
	}
	return &ResultError{Op: op, Result: ret}
}

// presentable reports whether an acquire or present result lets the
// frame go on. Suboptimal surfaces still present correctly.
func presentable(ret vk.Result) bool {
	return ret == vk.Success || ret == vk.Suboptimal
}

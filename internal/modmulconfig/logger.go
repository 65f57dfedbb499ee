/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package modmulconfig

import "github.com/hyperledger-labs/modmul/common/flogging"

var logger = flogging.MustGetLogger("modmul.config")

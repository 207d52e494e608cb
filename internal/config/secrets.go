/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service/keys for OS keyring.
const (
	keyringService = "EthMillion"
	keyringWallet  = "wallet_address"
)

var ErrNoWallet = errors.New("no remembered wallet")

// SecretStore abstracts the OS keyring so it can be stubbed in tests.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements SecretStore using github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var secrets SecretStore = osKeyring{}

// SetSecretStore swaps the keyring backend and returns a restore func.
func SetSecretStore(s SecretStore) (restore func()) {
	prev := secrets
	secrets = s
	return func() { secrets = prev }
}

// RememberedWallet returns the wallet address stored in the keyring.
func RememberedWallet() (string, error) {
	v, err := secrets.Get(keyringService, keyringWallet)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && strings.TrimSpace(v) == "") {
		return "", ErrNoWallet
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func RememberWallet(addr string) error {
	return secrets.Set(keyringService, keyringWallet, addr)
}

// ForgetWallet removes the remembered address; a missing entry is not an error.
func ForgetWallet() error {
	err := secrets.Delete(keyringService, keyringWallet)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

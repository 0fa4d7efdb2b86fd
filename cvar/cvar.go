// SPDX-License-Identifier: GPL-2.0-or-later

package cvar

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"deflight/conlog"
)

var (
	cvarArray  []*Cvar
	cvarByName = make(map[string]*Cvar)
)

type flag uint64

const (
	// cvar flags bitfield
	NONE        flag = 0
	ARCHIVE     flag = 1
	NOTIFY      flag = 1 << 1
	SERVERINFO  flag = 1 << 2
	USERINFO    flag = 1 << 3
	CHANGED     flag = 1 << 4
	ROM         flag = 1 << 6
	LOCKED      flag = 1 << 8 // locked temporarily
	REGISTERED  flag = 1 << 10
	CALLBACK    flag = 1 << 16
	USERDEFINED flag = 1 << 17 // cvar was created by the user/mod, and needs to be saved a bit differently.
	AUTOCVAR    flag = 1 << 18 // cvar changes need to feed back to qc global changes.
	SETA        flag = 1 << 19 // cvar will be saved with seta.
)

type CallbackFunc func(cv *Cvar)

type Cvar struct {
	archive    bool
	notify     bool
	serverinfo bool
	rom        bool
	user       bool
	seta       bool
	callback   CallbackFunc
	name       string
	// stringValue is the truth, value the derived one
	stringValue  string
	value        float32
	defaultValue string
	id           int
}

func All() []*Cvar {
	return cvarArray
}

func (cv *Cvar) Archive() bool {
	return cv.archive
}

func (cv *Cvar) Notify() bool {
	return cv.notify
}

func (cv *Cvar) UserDefined() bool {
	return cv.user
}

func (cv *Cvar) SetA() bool {
	return cv.seta
}

func (cv *Cvar) SetCallback(cb CallbackFunc) {
	cv.callback = cb
}

func (cv *Cvar) SetByString(s string) {
	if cv.rom {
		return
	}
	cv.stringValue = s
	pf, _ := strconv.ParseFloat(cv.stringValue, 32)
	cv.value = float32(pf)
	if cv.callback != nil {
		cv.callback(cv)
	}
}

func (cv *Cvar) Reset() {
	cv.SetByString(cv.defaultValue)
}

func (cv *Cvar) String() string {
	return cv.stringValue
}

func (cv *Cvar) ID() int {
	return cv.id
}

func (cv *Cvar) Name() string {
	return cv.name
}

func (cv *Cvar) Value() float32 {
	return cv.value
}

// Floats parses a space separated list like "1 0.5 0.5". Missing or
// malformed entries are 0.
func (cv *Cvar) Floats(n int) []float32 {
	r := make([]float32, n)
	for i, f := range strings.Fields(cv.stringValue) {
		if i >= n {
			break
		}
		v, _ := strconv.ParseFloat(f, 32)
		r[i] = float32(v)
	}
	return r
}

func (cv *Cvar) SetValue(value float32) {
	if float32(int(value)) == value {
		v := strconv.FormatInt(int64(value), 10)
		cv.SetByString(v)
	} else {
		v := strconv.FormatFloat(float64(value), 'f', -1, 32)
		cv.SetByString(v)
	}
}

func (cv *Cvar) Toggle() {
	if cv.String() == "1" {
		cv.SetByString("0")
	} else {
		cv.SetByString("1")
	}
}

func (cv *Cvar) Bool() bool {
	return cv.stringValue != "0"
}

func Get(name string) (*Cvar, bool) {
	cv, err := cvarByName[name]
	return cv, err
}

func GetByID(id int) (*Cvar, error) {
	if id < 0 || id >= len(cvarArray) {
		return nil, fmt.Errorf("id out of bounds")
	}
	return cvarArray[id], nil
}

func create(name, value string) *Cvar {
	cv := &Cvar{name: name, defaultValue: value}
	cv.SetByString(value)
	pos := len(cvarArray)
	cvarArray = append(cvarArray, cv)
	cvarByName[name] = cv
	cv.id = pos
	return cv
}

func Register(name, value string, flags flag) (*Cvar, error) {
	if _, ok := cvarByName[name]; ok {
		return nil, fmt.Errorf("Can't register variable %s, already defined\n", name)
	}

	cv := create(name, value)

	if flags&ARCHIVE != 0 {
		cv.archive = true
	}
	if flags&NOTIFY != 0 {
		cv.notify = true
	}
	if flags&SERVERINFO != 0 {
		cv.serverinfo = true
	}
	if flags&ROM != 0 {
		cv.rom = true
	}
	// registered 1<<10, callback 1<<16

	return cv, nil
}

func MustRegister(n, v string, flag flag) *Cvar {
	cv, err := Register(n, v, flag)
	if err != nil {
		log.Panic(n)
	}
	return cv
}

// Execute handles console input of the form `name [value]`.
// Returns false if args[0] is not a cvar.
func Execute(args []string) bool {
	if len(args) == 0 {
		return false
	}
	cv, ok := Get(args[0])
	if !ok {
		return false
	}
	if len(args) == 1 {
		conlog.Printf("\"%s\" is \"%s\"\n", cv.Name(), cv.String())
		return true
	}
	cv.SetByString(args[1])
	return true
}

// Set changes an existing cvar or creates a user defined one.
func Set(name, value string) *Cvar {
	if cv, ok := cvarByName[name]; ok {
		cv.SetByString(value)
		return cv
	}
	cv := create(name, value)
	cv.user = true
	return cv
}

func Toggle(name string) {
	if cv, ok := Get(name); ok {
		cv.Toggle()
	} else {
		log.Printf("toggle: Cvar not found %v", name)
		conlog.Printf("toggle: variable %v not found\n", name)
	}
}

func ResetAll() {
	for _, cv := range All() {
		cv.Reset()
	}
}

func List() {
	cvars := All()
	for _, v := range cvars {
		conlog.SafePrintf("%s%s %s \"%s\"\n",
			func() string {
				if v.Archive() {
					return "*"
				}
				return " "
			}(),
			func() string {
				if v.Notify() {
					return "s"
				}
				return " "
			}(),
			v.Name(),
			v.String())
	}
	conlog.SafePrintf("%v cvars\n", len(cvars))
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CodedInternet/gomd22/onboard"
	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"
)

func apiRequest(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Add("Content-Type", "application/json")

	ts, _ := newJWT("api@test.case")
	req.Header.Set("Authorization", "Bearer "+ts)

	rr := httptest.NewRecorder()
	Router().ServeHTTP(rr, req)
	return rr
}

func decodeState(rr *httptest.ResponseRecorder) (state onboard.UnitState) {
	json.NewDecoder(rr.Body).Decode(&state)
	return
}

func TestUnitsAPI(t *testing.T) {
	Convey("the api requires a token", t, func() {
		req := httptest.NewRequest("GET", "/api/units", nil)
		rr := httptest.NewRecorder()
		Router().ServeHTTP(rr, req)
		So(rr.Code, ShouldEqual, http.StatusUnauthorized)

		Convey("unless running in debug mode", func() {
			ENV.DEBUG = true
			defer func() { ENV.DEBUG = false }()

			rr := httptest.NewRecorder()
			Router().ServeHTTP(rr, httptest.NewRequest("GET", "/api/units", nil))
			So(rr.Code, ShouldEqual, http.StatusOK)
		})
	})

	Convey("trailing slashes redirect to the canonical path", t, func() {
		rr := apiRequest("GET", "/api/units/left/", nil)
		So(rr.Code, ShouldEqual, http.StatusMovedPermanently)
		So(rr.Header().Get("Location"), ShouldEqual, "/api/units/left")
	})

	Convey("units are listed", t, func() {
		rr := apiRequest("GET", "/api/units", nil)
		So(rr.Code, ShouldEqual, http.StatusOK)

		var states []onboard.UnitState
		So(json.NewDecoder(rr.Body).Decode(&states), ShouldBeNil)
		So(len(states), ShouldEqual, 2)
		So(states[0].Name, ShouldEqual, "left")
	})

	Convey("a single unit is returned by name", t, func() {
		rr := apiRequest("GET", "/api/units/right", nil)
		So(rr.Code, ShouldEqual, http.StatusOK)
		So(decodeState(rr).Address, ShouldEqual, 0xB2)
	})

	Convey("unknown units are 404", t, func() {
		So(apiRequest("GET", "/api/units/middle", nil).Code, ShouldEqual, http.StatusNotFound)
		So(apiRequest("PUT", "/api/units/middle", map[string]int{"speed": 1}).Code, ShouldEqual, http.StatusNotFound)
	})

	Convey("registers are written through PUT", t, func() {
		rr := apiRequest("PUT", "/api/units/left", map[string]int{"speed": 200, "turn": 30, "acceleration": 4})
		So(rr.Code, ShouldEqual, http.StatusOK)

		state := decodeState(rr)
		So(state.Speed, ShouldEqual, 200)
		So(state.Turn, ShouldEqual, 30)
		So(state.Acceleration, ShouldEqual, 4)

		Convey("and stop centres the motors", func() {
			rr := apiRequest("POST", "/api/units/left/stop", nil)
			So(rr.Code, ShouldEqual, http.StatusOK)

			state := decodeState(rr)
			So(state.Speed, ShouldEqual, 128)
			So(state.Turn, ShouldEqual, 128)
		})
	})

	Convey("throttle and steer drive the unit", t, func() {
		rr := apiRequest("PUT", "/api/units/right", map[string]float64{"throttle": 1})
		So(rr.Code, ShouldEqual, http.StatusOK)
		So(decodeState(rr).Speed, ShouldEqual, 127)

		rr = apiRequest("POST", "/api/stop", nil)
		So(rr.Code, ShouldEqual, http.StatusOK)
	})

	Convey("bad payloads are rejected", t, func() {
		rr := apiRequest("PUT", "/api/units/left", map[string]float64{"speed": 1, "throttle": 1})
		So(rr.Code, ShouldEqual, http.StatusBadRequest)

		rr = apiRequest("PUT", "/api/units/left", map[string]string{"mode": "mode7"})
		So(rr.Code, ShouldEqual, http.StatusBadRequest)
	})

	Convey("the firmware revision is read from the board", t, func() {
		rr := apiRequest("GET", "/api/units/left/revision", nil)
		So(rr.Code, ShouldEqual, http.StatusOK)

		var rev RevisionPayload
		So(json.NewDecoder(rr.Body).Decode(&rev), ShouldBeNil)
		So(rev.Revision, ShouldEqual, onboard.SIM_REVISION)
	})

	Convey("tokens can be refreshed", t, func() {
		rr := apiRequest("GET", "/api/refresh_token", nil)
		So(rr.Code, ShouldEqual, http.StatusOK)
		So(rr.Body.String(), ShouldContainSubstring, `"token":`)
	})
}

func TestStateStream(t *testing.T) {
	Convey("the state stream pushes every unit", t, func() {
		server := httptest.NewServer(Router())
		defer server.Close()

		ts, _ := newJWT("stream@test.case")
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/state?jwt=" + ts

		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		var states []onboard.UnitState
		So(conn.ReadJSON(&states), ShouldBeNil)
		So(len(states), ShouldEqual, 2)
	})
}

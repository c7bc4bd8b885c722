package main

// The three kernel templates below implement the identical per-element
// update as heatTransfer, differing only in where cell geometry and state
// live. Arithmetic order matches the host solver so the backends agree to
// float rounding.

// kernelFlatSource locates each element's cells in one flattened buffer
// through cumulative end offsets. The tridiagonal scratch lives in global
// buffers sized like the cell buffer.
const kernelFlatSource = `#define MAX_DELTA_TEMPERATURE 10.0f
#define MAX_TIME_SUBDIVISIONS 4u
#define SIGMA 0.0000000567f
#define ADIABATIC_H -100000.0f
#define CONST_TEMP_H -100001.0f

float material_specific_heat(uint id, float temperature) {
	//! specific_heat
	return 0.0f;
}

float material_conductivity(uint id, float temperature) {
	//! conductivity
	return 0.0f;
}

float material_density(uint id) {
	//! density
	return 0.0f;
}

float material_emissivity(uint id) {
	//! emissivity
	return 0.0f;
}

float cell_size(__global const uint* cells, uint i) {
	return as_float(cells[3u * i]);
}

uint cell_material(__global const uint* cells, uint i) {
	return cells[3u * i + 1u];
}

float cell_temperature(__global const uint* cells, uint i) {
	return as_float(cells[3u * i + 2u]);
}

void set_cell_temperature(__global uint* cells, uint i, float t) {
	cells[3u * i + 2u] = as_uint(t);
}

float element_max_delta(__global const uint* cells, uint start, uint end, float delta_time) {
	float delta = 0.0f;

	float t_b = cell_temperature(cells, start);
	float x_b = cell_size(cells, start);
	float k_b = material_conductivity(cell_material(cells, start), t_b);

	uint m_c = cell_material(cells, start + 1u);
	float t_c = cell_temperature(cells, start + 1u);
	float x_c = cell_size(cells, start + 1u);
	float k_c = material_conductivity(m_c, t_c);

	float before = (k_c + k_b) / 2.0f * (t_c - t_b) / ((x_c + x_b) / 2.0f);
	float f1 = delta_time * (material_density(m_c) * material_specific_heat(m_c, t_c));

	for (uint i = start + 1u; i < end - 1u; i++) {
		uint m_a = cell_material(cells, i + 1u);
		float t_a = cell_temperature(cells, i + 1u);
		float x_a = cell_size(cells, i + 1u);
		float k_a = material_conductivity(m_a, t_a);

		float after = (k_c + k_a) / 2.0f * (t_a - t_c) / ((x_a + x_c) / 2.0f);
		delta = fmax(delta, fabs(f1 * (after - before) / x_c));

		x_c = x_a;
		before = after;
		f1 = delta_time * (material_density(m_a) * material_specific_heat(m_a, t_a));
	}
	return delta;
}

uint time_subdivisions(float max_delta) {
	if (max_delta < MAX_DELTA_TEMPERATURE) {
		return 1u;
	}
	float p = ceil(log2(max_delta / MAX_DELTA_TEMPERATURE));
	if (p >= 2.0f) {
		return MAX_TIME_SUBDIVISIONS;
	}
	return 1u << (uint)p;
}

float4 boundary_closure(__global const uint* cells, uint start, uint end,
	float h_f, float h_b, float q_f, float q_b)
{
	float rfac2_f;
	float qdxk_f;
	if (h_f == ADIABATIC_H) {
		rfac2_f = 1.0f;
		qdxk_f = 0.0f;
	} else if (h_f == CONST_TEMP_H) {
		rfac2_f = -1.0f;
		qdxk_f = 2.0f * q_f;
	} else {
		float t_f = (cell_temperature(cells, start) + cell_temperature(cells, start + 1u)) / 2.0f;
		uint m_f = cell_material(cells, start);
		float dx_f = cell_size(cells, start);

		float emissivity = material_emissivity(m_f);
		float emission_rfac = 2.0f * emissivity * SIGMA * t_f * t_f * t_f;
		float emission_qdxk = 3.0f * emissivity * SIGMA * t_f * t_f * t_f * t_f;

		float rfac = 0.5f * h_f + emission_rfac;
		float k_f = material_conductivity(m_f, t_f);
		rfac2_f = (k_f / dx_f - rfac) / (k_f / dx_f + rfac);
		qdxk_f = (q_f + emission_qdxk) / (k_f / dx_f + rfac);
	}

	float rfac2_b;
	float qdxk_b;
	if (h_b == ADIABATIC_H) {
		rfac2_b = 1.0f;
		qdxk_b = 0.0f;
	} else if (h_b == CONST_TEMP_H) {
		rfac2_b = -1.0f;
		qdxk_b = 2.0f * q_b;
	} else {
		float t_bk = (cell_temperature(cells, end - 1u) + cell_temperature(cells, end - 2u)) / 2.0f;
		uint m_bk = cell_material(cells, end - 1u);
		float dx_bk = cell_size(cells, end - 1u);

		float emissivity = material_emissivity(m_bk);
		float emission_rfac = 2.0f * emissivity * SIGMA * t_bk * t_bk * t_bk;
		float emission_qdxk = 3.0f * emissivity * SIGMA * t_bk * t_bk * t_bk * t_bk;

		float rfac = 0.5f * h_b + emission_rfac;
		float k_bk = material_conductivity(m_bk, t_bk);
		rfac2_b = (k_bk / dx_bk - rfac) / (k_bk / dx_bk + rfac);
		qdxk_b = (q_b + emission_qdxk) / (k_bk / dx_bk + rfac);
	}
	return (float4)(rfac2_f, qdxk_f, rfac2_b, qdxk_b);
}

void solve_element(__global uint* cells, uint start, uint end,
	__global float* mat_b, __global float* mat_d, __global float* mat_a, __global float* mat_c,
	float4 closure, float delta_time)
{
	uint n = end - start - 2u;

	float t_d = cell_temperature(cells, start + 1u);
	uint m_d = cell_material(cells, start + 1u);
	float dx_d = cell_size(cells, start + 1u);

	float f1 = 2.0f * material_density(m_d) * material_specific_heat(m_d, t_d);

	float t_b = cell_temperature(cells, start);
	float dx_b = cell_size(cells, start);

	float k_b = (material_conductivity(m_d, t_d) + material_conductivity(cell_material(cells, start), t_b)) / 2.0f;
	float b = -delta_time * k_b / (f1 * dx_d * (dx_d + dx_b) / 2.0f);
	float c_b = b * (t_d - t_b);

	for (uint i = 1u; i < end - start - 1u; i++) {
		float t_a = cell_temperature(cells, start + i + 1u);
		uint m_a = cell_material(cells, start + i + 1u);
		float dx_a = cell_size(cells, start + i + 1u);

		float k_a = (material_conductivity(m_d, t_d) + material_conductivity(m_a, t_a)) / 2.0f;
		float a = -delta_time * k_a / (f1 * dx_d * (dx_d + dx_a) / 2.0f);
		float c_a = a * (t_a - t_d);

		uint row = start + i - 1u;
		mat_b[row] = b;
		mat_d[row] = 1.0f - a - b;
		mat_a[row] = a;
		mat_c[row] = t_d - c_a + c_b;

		f1 = 2.0f * material_density(m_a) * material_specific_heat(m_a, t_a);
		float k_next = (material_conductivity(m_a, t_a) + material_conductivity(m_a, t_d)) / 2.0f;
		b = -delta_time * k_next / (f1 * dx_a * (dx_a + dx_d) / 2.0f);
		c_b = b * (t_a - t_d);

		t_d = t_a;
		m_d = m_a;
		dx_d = dx_a;
	}

	uint base = start;
	mat_c[base] -= mat_b[base] * closure.y;
	mat_c[base + n - 1u] -= mat_a[base + n - 1u] * closure.w;
	mat_d[base] += mat_b[base] * closure.x;
	mat_d[base + n - 1u] += mat_a[base + n - 1u] * closure.z;

	for (uint i = 1u; i < n; i++) {
		float r = mat_b[base + i] / mat_d[base + i - 1u];
		mat_d[base + i] -= r * mat_a[base + i - 1u];
		mat_c[base + i] -= r * mat_c[base + i - 1u];
	}
	mat_c[base + n - 1u] /= mat_d[base + n - 1u];
	for (int i = (int)n - 2; i >= 0; i--) {
		uint row = base + (uint)i;
		mat_c[row] = (mat_c[row] - mat_a[row] * mat_c[row + 1u]) / mat_d[row];
	}

	for (uint i = 0u; i < n; i++) {
		set_cell_temperature(cells, start + 1u + i, mat_c[base + i]);
	}
	set_cell_temperature(cells, start, cell_temperature(cells, start + 1u) * closure.x + closure.y);
	set_cell_temperature(cells, end - 1u, cell_temperature(cells, end - 2u) * closure.z + closure.w);
}

__kernel void heat_update(
	const int element_count,
	const float delta_time,
	__global const uint* cell_ends,
	__global uint* cells,
	__global float* mat_b,
	__global float* mat_d,
	__global float* mat_a,
	__global float* mat_c,
	__global const float* coeffs,
	__global const float* flux,
	__global float* out_temperatures)
{
	uint gid = get_global_id(0);
	if (gid >= (uint)element_count) {
		return;
	}

	uint end = cell_ends[gid];
	uint start = (gid == 0u) ? 0u : cell_ends[gid - 1u];

	float h_f = coeffs[2u * gid];
	float h_b = coeffs[2u * gid + 1u];
	float q_f = flux[2u * gid];
	float q_b = flux[2u * gid + 1u];

	uint repeats = time_subdivisions(element_max_delta(cells, start, end, delta_time));
	float sub_delta_time = delta_time / (float)repeats;
	for (uint r = 0u; r < repeats; r++) {
		float4 closure = boundary_closure(cells, start, end, h_f, h_b, q_f, q_b);
		solve_element(cells, start, end, mat_b, mat_d, mat_a, mat_c, closure, sub_delta_time);
	}

	out_temperatures[2u * gid] = (cell_temperature(cells, start) + cell_temperature(cells, start + 1u)) / 2.0f;
	out_temperatures[2u * gid + 1u] = (cell_temperature(cells, end - 1u) + cell_temperature(cells, end - 2u)) / 2.0f;
}
`

// kernelGroupSource is specialized per kernel group: cell sizes and
// material indices are compile-time constant arrays, only temperatures
// stay in a global buffer. The tridiagonal scratch fits in private arrays.
const kernelGroupSource = `#define MAX_DELTA_TEMPERATURE 10.0f
#define MAX_TIME_SUBDIVISIONS 4u
#define SIGMA 0.0000000567f
#define ADIABATIC_H -100000.0f
#define CONST_TEMP_H -100001.0f

//! cell_length

//! cell_sizes

//! cell_materials

float material_specific_heat(uint id, float temperature) {
	//! specific_heat
	return 0.0f;
}

float material_conductivity(uint id, float temperature) {
	//! conductivity
	return 0.0f;
}

float material_density(uint id) {
	//! density
	return 0.0f;
}

float material_emissivity(uint id) {
	//! emissivity
	return 0.0f;
}

float element_max_delta(__global const float* temperatures, uint base, float delta_time) {
	float delta = 0.0f;

	float t_b = temperatures[base];
	float x_b = cell_sizes[0];
	float k_b = material_conductivity(cell_materials[0], t_b);

	uint m_c = cell_materials[1];
	float t_c = temperatures[base + 1u];
	float x_c = cell_sizes[1];
	float k_c = material_conductivity(m_c, t_c);

	float before = (k_c + k_b) / 2.0f * (t_c - t_b) / ((x_c + x_b) / 2.0f);
	float f1 = delta_time * (material_density(m_c) * material_specific_heat(m_c, t_c));

	for (uint i = 1u; i < CELL_LENGTH - 1u; i++) {
		uint m_a = cell_materials[i + 1u];
		float t_a = temperatures[base + i + 1u];
		float x_a = cell_sizes[i + 1u];
		float k_a = material_conductivity(m_a, t_a);

		float after = (k_c + k_a) / 2.0f * (t_a - t_c) / ((x_a + x_c) / 2.0f);
		delta = fmax(delta, fabs(f1 * (after - before) / x_c));

		x_c = x_a;
		before = after;
		f1 = delta_time * (material_density(m_a) * material_specific_heat(m_a, t_a));
	}
	return delta;
}

uint time_subdivisions(float max_delta) {
	if (max_delta < MAX_DELTA_TEMPERATURE) {
		return 1u;
	}
	float p = ceil(log2(max_delta / MAX_DELTA_TEMPERATURE));
	if (p >= 2.0f) {
		return MAX_TIME_SUBDIVISIONS;
	}
	return 1u << (uint)p;
}

float4 boundary_closure(__global const float* temperatures, uint base,
	float h_f, float h_b, float q_f, float q_b)
{
	float rfac2_f;
	float qdxk_f;
	if (h_f == ADIABATIC_H) {
		rfac2_f = 1.0f;
		qdxk_f = 0.0f;
	} else if (h_f == CONST_TEMP_H) {
		rfac2_f = -1.0f;
		qdxk_f = 2.0f * q_f;
	} else {
		float t_f = (temperatures[base] + temperatures[base + 1u]) / 2.0f;
		uint m_f = cell_materials[0];
		float dx_f = cell_sizes[0];

		float emissivity = material_emissivity(m_f);
		float emission_rfac = 2.0f * emissivity * SIGMA * t_f * t_f * t_f;
		float emission_qdxk = 3.0f * emissivity * SIGMA * t_f * t_f * t_f * t_f;

		float rfac = 0.5f * h_f + emission_rfac;
		float k_f = material_conductivity(m_f, t_f);
		rfac2_f = (k_f / dx_f - rfac) / (k_f / dx_f + rfac);
		qdxk_f = (q_f + emission_qdxk) / (k_f / dx_f + rfac);
	}

	float rfac2_b;
	float qdxk_b;
	if (h_b == ADIABATIC_H) {
		rfac2_b = 1.0f;
		qdxk_b = 0.0f;
	} else if (h_b == CONST_TEMP_H) {
		rfac2_b = -1.0f;
		qdxk_b = 2.0f * q_b;
	} else {
		float t_bk = (temperatures[base + CELL_LENGTH - 1u] + temperatures[base + CELL_LENGTH - 2u]) / 2.0f;
		uint m_bk = cell_materials[CELL_LENGTH - 1u];
		float dx_bk = cell_sizes[CELL_LENGTH - 1u];

		float emissivity = material_emissivity(m_bk);
		float emission_rfac = 2.0f * emissivity * SIGMA * t_bk * t_bk * t_bk;
		float emission_qdxk = 3.0f * emissivity * SIGMA * t_bk * t_bk * t_bk * t_bk;

		float rfac = 0.5f * h_b + emission_rfac;
		float k_bk = material_conductivity(m_bk, t_bk);
		rfac2_b = (k_bk / dx_bk - rfac) / (k_bk / dx_bk + rfac);
		qdxk_b = (q_b + emission_qdxk) / (k_bk / dx_bk + rfac);
	}
	return (float4)(rfac2_f, qdxk_f, rfac2_b, qdxk_b);
}

void solve_element(__global float* temperatures, uint base, float4 closure, float delta_time) {
	float mat_b[N];
	float mat_d[N];
	float mat_a[N];
	float mat_c[N];

	float t_d = temperatures[base + 1u];
	uint m_d = cell_materials[1];
	float dx_d = cell_sizes[1];

	float f1 = 2.0f * material_density(m_d) * material_specific_heat(m_d, t_d);

	float t_b = temperatures[base];
	float dx_b = cell_sizes[0];

	float k_b = (material_conductivity(m_d, t_d) + material_conductivity(cell_materials[0], t_b)) / 2.0f;
	float b = -delta_time * k_b / (f1 * dx_d * (dx_d + dx_b) / 2.0f);
	float c_b = b * (t_d - t_b);

	for (uint i = 1u; i < CELL_LENGTH - 1u; i++) {
		float t_a = temperatures[base + i + 1u];
		uint m_a = cell_materials[i + 1u];
		float dx_a = cell_sizes[i + 1u];

		float k_a = (material_conductivity(m_d, t_d) + material_conductivity(m_a, t_a)) / 2.0f;
		float a = -delta_time * k_a / (f1 * dx_d * (dx_d + dx_a) / 2.0f);
		float c_a = a * (t_a - t_d);

		mat_b[i - 1u] = b;
		mat_d[i - 1u] = 1.0f - a - b;
		mat_a[i - 1u] = a;
		mat_c[i - 1u] = t_d - c_a + c_b;

		f1 = 2.0f * material_density(m_a) * material_specific_heat(m_a, t_a);
		float k_next = (material_conductivity(m_a, t_a) + material_conductivity(m_a, t_d)) / 2.0f;
		b = -delta_time * k_next / (f1 * dx_a * (dx_a + dx_d) / 2.0f);
		c_b = b * (t_a - t_d);

		t_d = t_a;
		m_d = m_a;
		dx_d = dx_a;
	}

	mat_c[0] -= mat_b[0] * closure.y;
	mat_c[N - 1u] -= mat_a[N - 1u] * closure.w;
	mat_d[0] += mat_b[0] * closure.x;
	mat_d[N - 1u] += mat_a[N - 1u] * closure.z;

	for (uint i = 1u; i < N; i++) {
		float r = mat_b[i] / mat_d[i - 1u];
		mat_d[i] -= r * mat_a[i - 1u];
		mat_c[i] -= r * mat_c[i - 1u];
	}
	mat_c[N - 1u] /= mat_d[N - 1u];
	for (int i = (int)N - 2; i >= 0; i--) {
		mat_c[i] = (mat_c[i] - mat_a[i] * mat_c[i + 1]) / mat_d[i];
	}

	for (uint i = 0u; i < N; i++) {
		temperatures[base + 1u + i] = mat_c[i];
	}
	temperatures[base] = temperatures[base + 1u] * closure.x + closure.y;
	temperatures[base + CELL_LENGTH - 1u] = temperatures[base + CELL_LENGTH - 2u] * closure.z + closure.w;
}

__kernel void heat_update(
	const int element_count,
	const float delta_time,
	__global float* temperatures,
	__global const float* coeffs,
	__global const float* flux,
	__global float* out_temperatures)
{
	uint gid = get_global_id(0);
	if (gid >= (uint)element_count) {
		return;
	}

	uint base = gid * CELL_LENGTH;

	float h_f = coeffs[2u * gid];
	float h_b = coeffs[2u * gid + 1u];
	float q_f = flux[2u * gid];
	float q_b = flux[2u * gid + 1u];

	uint repeats = time_subdivisions(element_max_delta(temperatures, base, delta_time));
	float sub_delta_time = delta_time / (float)repeats;
	for (uint r = 0u; r < repeats; r++) {
		float4 closure = boundary_closure(temperatures, base, h_f, h_b, q_f, q_b);
		solve_element(temperatures, base, closure, sub_delta_time);
	}

	out_temperatures[2u * gid] = (temperatures[base] + temperatures[base + 1u]) / 2.0f;
	out_temperatures[2u * gid + 1u] = (temperatures[base + CELL_LENGTH - 1u] + temperatures[base + CELL_LENGTH - 2u]) / 2.0f;
}
`

// kernelPaddedSource pads every element to the same capacity: one header
// word with the real cell count, then packed cells, zero-filled up to
// MAX_CELL_COUNT. One uniform dispatch covers mixed structures at the cost
// of the padding bandwidth.
const kernelPaddedSource = `#define MAX_DELTA_TEMPERATURE 10.0f
#define MAX_TIME_SUBDIVISIONS 4u
#define SIGMA 0.0000000567f
#define ADIABATIC_H -100000.0f
#define CONST_TEMP_H -100001.0f

//! max_cell_count

#define ELEMENT_STRIDE (1u + 3u * MAX_CELL_COUNT)

float material_specific_heat(uint id, float temperature) {
	//! specific_heat
	return 0.0f;
}

float material_conductivity(uint id, float temperature) {
	//! conductivity
	return 0.0f;
}

float material_density(uint id) {
	//! density
	return 0.0f;
}

float material_emissivity(uint id) {
	//! emissivity
	return 0.0f;
}

float cell_size(__global const uint* cells, uint i) {
	return as_float(cells[3u * i]);
}

uint cell_material(__global const uint* cells, uint i) {
	return cells[3u * i + 1u];
}

float cell_temperature(__global const uint* cells, uint i) {
	return as_float(cells[3u * i + 2u]);
}

void set_cell_temperature(__global uint* cells, uint i, float t) {
	cells[3u * i + 2u] = as_uint(t);
}

float element_max_delta(__global const uint* cells, uint len, float delta_time) {
	float delta = 0.0f;

	float t_b = cell_temperature(cells, 0u);
	float x_b = cell_size(cells, 0u);
	float k_b = material_conductivity(cell_material(cells, 0u), t_b);

	uint m_c = cell_material(cells, 1u);
	float t_c = cell_temperature(cells, 1u);
	float x_c = cell_size(cells, 1u);
	float k_c = material_conductivity(m_c, t_c);

	float before = (k_c + k_b) / 2.0f * (t_c - t_b) / ((x_c + x_b) / 2.0f);
	float f1 = delta_time * (material_density(m_c) * material_specific_heat(m_c, t_c));

	for (uint i = 1u; i < len - 1u; i++) {
		uint m_a = cell_material(cells, i + 1u);
		float t_a = cell_temperature(cells, i + 1u);
		float x_a = cell_size(cells, i + 1u);
		float k_a = material_conductivity(m_a, t_a);

		float after = (k_c + k_a) / 2.0f * (t_a - t_c) / ((x_a + x_c) / 2.0f);
		delta = fmax(delta, fabs(f1 * (after - before) / x_c));

		x_c = x_a;
		before = after;
		f1 = delta_time * (material_density(m_a) * material_specific_heat(m_a, t_a));
	}
	return delta;
}

uint time_subdivisions(float max_delta) {
	if (max_delta < MAX_DELTA_TEMPERATURE) {
		return 1u;
	}
	float p = ceil(log2(max_delta / MAX_DELTA_TEMPERATURE));
	if (p >= 2.0f) {
		return MAX_TIME_SUBDIVISIONS;
	}
	return 1u << (uint)p;
}

float4 boundary_closure(__global const uint* cells, uint len,
	float h_f, float h_b, float q_f, float q_b)
{
	float rfac2_f;
	float qdxk_f;
	if (h_f == ADIABATIC_H) {
		rfac2_f = 1.0f;
		qdxk_f = 0.0f;
	} else if (h_f == CONST_TEMP_H) {
		rfac2_f = -1.0f;
		qdxk_f = 2.0f * q_f;
	} else {
		float t_f = (cell_temperature(cells, 0u) + cell_temperature(cells, 1u)) / 2.0f;
		uint m_f = cell_material(cells, 0u);
		float dx_f = cell_size(cells, 0u);

		float emissivity = material_emissivity(m_f);
		float emission_rfac = 2.0f * emissivity * SIGMA * t_f * t_f * t_f;
		float emission_qdxk = 3.0f * emissivity * SIGMA * t_f * t_f * t_f * t_f;

		float rfac = 0.5f * h_f + emission_rfac;
		float k_f = material_conductivity(m_f, t_f);
		rfac2_f = (k_f / dx_f - rfac) / (k_f / dx_f + rfac);
		qdxk_f = (q_f + emission_qdxk) / (k_f / dx_f + rfac);
	}

	float rfac2_b;
	float qdxk_b;
	if (h_b == ADIABATIC_H) {
		rfac2_b = 1.0f;
		qdxk_b = 0.0f;
	} else if (h_b == CONST_TEMP_H) {
		rfac2_b = -1.0f;
		qdxk_b = 2.0f * q_b;
	} else {
		float t_bk = (cell_temperature(cells, len - 1u) + cell_temperature(cells, len - 2u)) / 2.0f;
		uint m_bk = cell_material(cells, len - 1u);
		float dx_bk = cell_size(cells, len - 1u);

		float emissivity = material_emissivity(m_bk);
		float emission_rfac = 2.0f * emissivity * SIGMA * t_bk * t_bk * t_bk;
		float emission_qdxk = 3.0f * emissivity * SIGMA * t_bk * t_bk * t_bk * t_bk;

		float rfac = 0.5f * h_b + emission_rfac;
		float k_bk = material_conductivity(m_bk, t_bk);
		rfac2_b = (k_bk / dx_bk - rfac) / (k_bk / dx_bk + rfac);
		qdxk_b = (q_b + emission_qdxk) / (k_bk / dx_bk + rfac);
	}
	return (float4)(rfac2_f, qdxk_f, rfac2_b, qdxk_b);
}

void solve_element(__global uint* cells, uint len, float4 closure, float delta_time) {
	float mat_b[N];
	float mat_d[N];
	float mat_a[N];
	float mat_c[N];

	uint n = len - 2u;

	float t_d = cell_temperature(cells, 1u);
	uint m_d = cell_material(cells, 1u);
	float dx_d = cell_size(cells, 1u);

	float f1 = 2.0f * material_density(m_d) * material_specific_heat(m_d, t_d);

	float t_b = cell_temperature(cells, 0u);
	float dx_b = cell_size(cells, 0u);

	float k_b = (material_conductivity(m_d, t_d) + material_conductivity(cell_material(cells, 0u), t_b)) / 2.0f;
	float b = -delta_time * k_b / (f1 * dx_d * (dx_d + dx_b) / 2.0f);
	float c_b = b * (t_d - t_b);

	for (uint i = 1u; i < len - 1u; i++) {
		float t_a = cell_temperature(cells, i + 1u);
		uint m_a = cell_material(cells, i + 1u);
		float dx_a = cell_size(cells, i + 1u);

		float k_a = (material_conductivity(m_d, t_d) + material_conductivity(m_a, t_a)) / 2.0f;
		float a = -delta_time * k_a / (f1 * dx_d * (dx_d + dx_a) / 2.0f);
		float c_a = a * (t_a - t_d);

		mat_b[i - 1u] = b;
		mat_d[i - 1u] = 1.0f - a - b;
		mat_a[i - 1u] = a;
		mat_c[i - 1u] = t_d - c_a + c_b;

		f1 = 2.0f * material_density(m_a) * material_specific_heat(m_a, t_a);
		float k_next = (material_conductivity(m_a, t_a) + material_conductivity(m_a, t_d)) / 2.0f;
		b = -delta_time * k_next / (f1 * dx_a * (dx_a + dx_d) / 2.0f);
		c_b = b * (t_a - t_d);

		t_d = t_a;
		m_d = m_a;
		dx_d = dx_a;
	}

	mat_c[0] -= mat_b[0] * closure.y;
	mat_c[n - 1u] -= mat_a[n - 1u] * closure.w;
	mat_d[0] += mat_b[0] * closure.x;
	mat_d[n - 1u] += mat_a[n - 1u] * closure.z;

	for (uint i = 1u; i < n; i++) {
		float r = mat_b[i] / mat_d[i - 1u];
		mat_d[i] -= r * mat_a[i - 1u];
		mat_c[i] -= r * mat_c[i - 1u];
	}
	mat_c[n - 1u] /= mat_d[n - 1u];
	for (int i = (int)n - 2; i >= 0; i--) {
		mat_c[i] = (mat_c[i] - mat_a[i] * mat_c[i + 1]) / mat_d[i];
	}

	for (uint i = 0u; i < n; i++) {
		set_cell_temperature(cells, 1u + i, mat_c[i]);
	}
	set_cell_temperature(cells, 0u, cell_temperature(cells, 1u) * closure.x + closure.y);
	set_cell_temperature(cells, len - 1u, cell_temperature(cells, len - 2u) * closure.z + closure.w);
}

__kernel void heat_update(
	const int element_count,
	const float delta_time,
	__global uint* elements,
	__global const float* coeffs,
	__global const float* flux,
	__global float* out_temperatures)
{
	uint gid = get_global_id(0);
	if (gid >= (uint)element_count) {
		return;
	}

	uint base = gid * ELEMENT_STRIDE;
	__global uint* cells = elements + base + 1u;
	uint len = elements[base];

	float h_f = coeffs[2u * gid];
	float h_b = coeffs[2u * gid + 1u];
	float q_f = flux[2u * gid];
	float q_b = flux[2u * gid + 1u];

	uint repeats = time_subdivisions(element_max_delta(cells, len, delta_time));
	float sub_delta_time = delta_time / (float)repeats;
	for (uint r = 0u; r < repeats; r++) {
		float4 closure = boundary_closure(cells, len, h_f, h_b, q_f, q_b);
		solve_element(cells, len, closure, sub_delta_time);
	}

	out_temperatures[2u * gid] = (cell_temperature(cells, 0u) + cell_temperature(cells, 1u)) / 2.0f;
	out_temperatures[2u * gid + 1u] = (cell_temperature(cells, len - 1u) + cell_temperature(cells, len - 2u)) / 2.0f;
}
`
